package model

import (
	"math"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/frame"
)

// normalizeMean and normalizeStd are the ImageNet-style normalization
// constants the reference network was trained with; the same pair is
// applied to all three channels.
const (
	normalizeMean = 0.485
	normalizeStd  = 0.229
)

// squareSize is the fixed spatial shape the network expects, regardless of
// a frame's native aspect ratio. Frames are bilinearly resized down to
// squareSize x squareSize before inference and masks are bilinearly resized
// back up to the frame's native dimensions afterward, mirroring the
// reference's two torch.nn.functional.interpolate(..., mode='bilinear')
// calls around the forward pass.
const squareSize = config.PipelineHeight

// resizeFrameBilinear resizes an RGB frame to size x size.
func resizeFrameBilinear(f frame.Frame, size uint32) frame.Frame {
	srcW, srcH := int(f.Width), int(f.Height)
	dstW, dstH := int(size), int(size)
	out := make([]byte, dstW*dstH*3)

	for y := 0; y < dstH; y++ {
		y0, y1, wy := sourceCoords(y, srcH, dstH)
		for x := 0; x < dstW; x++ {
			x0, x1, wx := sourceCoords(x, srcW, dstW)
			for c := 0; c < 3; c++ {
				v00 := float64(f.Pix[(y0*srcW+x0)*3+c])
				v01 := float64(f.Pix[(y0*srcW+x1)*3+c])
				v10 := float64(f.Pix[(y1*srcW+x0)*3+c])
				v11 := float64(f.Pix[(y1*srcW+x1)*3+c])
				top := v00 + (v01-v00)*wx
				bot := v10 + (v11-v10)*wx
				out[(y*dstW+x)*3+c] = clampByte(top + (bot-top)*wy)
			}
		}
	}
	return frame.Frame{Index: f.Index, Width: size, Height: size, Pix: out}
}

// resizeMaskBilinear resizes a single-channel byte plane from fromW x fromH
// to toW x toH.
func resizeMaskBilinear(pix []byte, fromW, fromH, toW, toH uint32) []byte {
	srcW, srcH := int(fromW), int(fromH)
	dstW, dstH := int(toW), int(toH)
	out := make([]byte, dstW*dstH)

	for y := 0; y < dstH; y++ {
		y0, y1, wy := sourceCoords(y, srcH, dstH)
		for x := 0; x < dstW; x++ {
			x0, x1, wx := sourceCoords(x, srcW, dstW)
			v00 := float64(pix[y0*srcW+x0])
			v01 := float64(pix[y0*srcW+x1])
			v10 := float64(pix[y1*srcW+x0])
			v11 := float64(pix[y1*srcW+x1])
			top := v00 + (v01-v00)*wx
			bot := v10 + (v11-v10)*wx
			out[y*dstW+x] = clampByte(top + (bot-top)*wy)
		}
	}
	return out
}

// sourceCoords maps destination index d (of length dstLen) back to the
// source axis (of length srcLen), returning its two neighboring clamped
// indices and the interpolation weight toward the second neighbor.
func sourceCoords(d, srcLen, dstLen int) (i0, i1 int, w float64) {
	pos := (float64(d)+0.5)*float64(srcLen)/float64(dstLen) - 0.5
	i0 = int(math.Floor(pos))
	i1 = i0 + 1
	w = pos - float64(i0)
	i0 = clampInt(i0, 0, srcLen-1)
	i1 = clampInt(i1, 0, srcLen-1)
	return i0, i1, w
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// toCHWFloat converts a row-major RGB frame into a planar (channel-first)
// float32 buffer, normalized to (x/255 - mean) / std. This is the network's
// expected input layout.
func toCHWFloat(f frame.Frame) []float32 {
	w, h := int(f.Width), int(f.Height)
	out := make([]float32, 3*w*h)
	plane := w * h
	for i := 0; i < w*h; i++ {
		r := float32(f.Pix[i*3+0]) / 255.0
		g := float32(f.Pix[i*3+1]) / 255.0
		b := float32(f.Pix[i*3+2]) / 255.0
		out[0*plane+i] = (r - normalizeMean) / normalizeStd
		out[1*plane+i] = (g - normalizeMean) / normalizeStd
		out[2*plane+i] = (b - normalizeMean) / normalizeStd
	}
	return out
}

// maskFromChannel min-max normalizes a single-channel float32 output plane
// to the [0,255] mask range, matching the reference's per-frame rescale
// instead of a fixed sigmoid threshold: the network's raw output range
// drifts across frames, and a fixed cutoff would clip differently on each.
func maskFromChannel(plane []float32, width, height uint32, index int) frame.Mask {
	min, max := plane[0], plane[0]
	for _, v := range plane {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	pix := make([]byte, len(plane))
	if span == 0 {
		return frame.Mask{Index: index, Width: width, Height: height, Pix: pix}
	}
	for i, v := range plane {
		pix[i] = byte(((v - min) / span) * 255.0)
	}
	return frame.Mask{Index: index, Width: width, Height: height, Pix: pix}
}
