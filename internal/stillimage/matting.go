package stillimage

import (
	"fmt"
	"image"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/frame"
)

// trimap value constants, matching the reference's 0/128/255 convention.
const (
	trimapBackground = 0
	trimapUnknown    = 128
	trimapForeground = 255
)

// AlphaMatte refines mask into an alpha matte: a trimap is
// built from the mask's high/low-confidence thresholds, eroded to shrink
// each region away from the true boundary, and the unknown band between
// them is solved from local foreground/background color statistics
// (a windowed approximation to the reference's global sparse
// estimate_alpha_cf solve, sized for per-pixel throughput instead of a
// whole-image linear system).
func AlphaMatte(src image.Image, mask frame.Mask, cfg config.Config) (*image.Gray, error) {
	w, h := int(mask.Width), int(mask.Height)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("stillimage: empty mask")
	}

	trimap := buildTrimap(mask, cfg.AlphaMattingForegroundThreshold, cfg.AlphaMattingBackgroundThreshold)
	trimap = erode(trimap, w, h, cfg.AlphaMattingErodeStructureSize)

	rgb := toRGBPlanes(src, w, h)
	alpha := image.NewGray(image.Rect(0, 0, w, h))

	const window = 5 // half-width of the local color-line neighborhood
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			switch trimap[idx] {
			case trimapForeground:
				alpha.Pix[idx] = 255
			case trimapBackground:
				alpha.Pix[idx] = 0
			default:
				alpha.Pix[idx] = solveColorLine(rgb, trimap, w, h, x, y, window)
			}
		}
	}
	return alpha, nil
}

// buildTrimap classifies each pixel as definite foreground, definite
// background, or unknown, from the raw mask and the two confidence
// thresholds.
func buildTrimap(mask frame.Mask, fgThresh, bgThresh uint8) []byte {
	trimap := make([]byte, len(mask.Pix))
	for i, v := range mask.Pix {
		switch {
		case v >= fgThresh:
			trimap[i] = trimapForeground
		case v <= bgThresh:
			trimap[i] = trimapBackground
		default:
			trimap[i] = trimapUnknown
		}
	}
	return trimap
}

// erode shrinks the foreground and background regions by structSize
// iterations that mark every pixel with a 4-neighbor in the unknown band
// as unknown, widening the unknown band the
// same way binary_erosion does in the reference before matting.
func erode(trimap []byte, w, h, structSize int) []byte {
	if structSize <= 0 {
		return trimap
	}
	for iter := 0; iter < structSize; iter++ {
		next := make([]byte, len(trimap))
		copy(next, trimap)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				if trimap[idx] == trimapUnknown {
					continue
				}
				if hasUnknownNeighbor(trimap, w, h, x, y) {
					next[idx] = trimapUnknown
				}
			}
		}
		trimap = next
	}
	return trimap
}

func hasUnknownNeighbor(trimap []byte, w, h, x, y int) bool {
	neighbors := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, n := range neighbors {
		nx, ny := x+n[0], y+n[1]
		if nx < 0 || nx >= w || ny < 0 || ny >= h {
			continue
		}
		if trimap[ny*w+nx] == trimapUnknown {
			return true
		}
	}
	return false
}

type rgbPlanes struct {
	r, g, b []float64
}

func toRGBPlanes(src image.Image, w, h int) rgbPlanes {
	p := rgbPlanes{r: make([]float64, w*h), g: make([]float64, w*h), b: make([]float64, w*h)}
	b := src.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r16, g16, b16, _ := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			idx := y*w + x
			p.r[idx] = float64(r16 >> 8)
			p.g[idx] = float64(g16 >> 8)
			p.b[idx] = float64(b16 >> 8)
		}
	}
	return p
}

// solveColorLine estimates alpha at (x,y) by projecting its color onto
// the line between the mean foreground and mean background colors found
// in a local window, the same color-line assumption closed-form matting
// relies on, applied locally rather than over the whole unknown region.
func solveColorLine(rgb rgbPlanes, trimap []byte, w, h, x, y, window int) byte {
	var fgR, fgG, fgB, fgN float64
	var bgR, bgG, bgB, bgN float64

	for dy := -window; dy <= window; dy++ {
		for dx := -window; dx <= window; dx++ {
			nx, ny := x+dx, y+dy
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			idx := ny*w + nx
			switch trimap[idx] {
			case trimapForeground:
				fgR += rgb.r[idx]
				fgG += rgb.g[idx]
				fgB += rgb.b[idx]
				fgN++
			case trimapBackground:
				bgR += rgb.r[idx]
				bgG += rgb.g[idx]
				bgB += rgb.b[idx]
				bgN++
			}
		}
	}

	if fgN == 0 || bgN == 0 {
		// No local anchor in either class; default to mid-confidence
		// rather than guessing a hard edge.
		return 128
	}

	fgR, fgG, fgB = fgR/fgN, fgG/fgN, fgB/fgN
	bgR, bgG, bgB = bgR/bgN, bgG/bgN, bgB/bgN

	idx := y*w + x
	px, py, pz := rgb.r[idx], rgb.g[idx], rgb.b[idx]

	dR, dG, dB := fgR-bgR, fgG-bgG, fgB-bgB
	denom := dR*dR + dG*dG + dB*dB
	if denom == 0 {
		return 128
	}

	alpha := ((px-bgR)*dR + (py-bgG)*dG + (pz-bgB)*dB) / denom
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return byte(alpha * 255)
}
