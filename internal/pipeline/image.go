package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/fetch"
	"github.com/five82/silhouette/internal/frame"
	"github.com/five82/silhouette/internal/model"
	"github.com/five82/silhouette/internal/reporter"
	"github.com/five82/silhouette/internal/stillimage"
)

// ImageResult reports the outcome of one still-image run.
type ImageResult struct {
	OutputPath string
	Elapsed    time.Duration
}

// RunImage runs the segmentation engine on a single still image and
// composites the result per cfg's cutout options.
func RunImage(ctx context.Context, cfg *config.Config, input, outputDir string, rep reporter.Reporter) (*ImageResult, error) {
	start := time.Now()

	src, err := decodeImage(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.InputFormat, err)
	}

	dev := device.Probe()
	rep.Device(reporter.DeviceSummary{Kind: dev.Kind.String(), Name: dev.Name})

	weightsPath, err := fetch.NewFetcher().Ensure(ctx, cfg.ModelVariant)
	if err != nil {
		return nil, err
	}
	rep.ModelReady(reporter.ModelSummary{Variant: string(cfg.ModelVariant), Path: weightsPath})

	engine, err := model.New(cfg.ModelVariant, dev, weightsPath)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	b := src.Bounds()
	width := uint32(b.Dx())
	height := config.PipelineHeight
	scaledWidth := uint32(float64(width) * float64(height) / float64(b.Dy()))

	f := frame.Frame{Index: 0, Width: scaledWidth, Height: height, Pix: toRGBBytes(src, int(scaledWidth), int(height))}

	masks, err := engine.Infer(ctx, []frame.Frame{f})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ModelLoad, err)
	}
	mask := upsampleMask(masks[0], uint32(b.Dx()), uint32(b.Dy()))

	var bgColor color.Color
	var bgImage image.Image

	out, err := stillimage.Cutout(src, mask, stillimage.Options{
		OnlyMask:        cfg.OnlyMask,
		AlphaMatting:    cfg.AlphaMatting,
		Matting:         *cfg,
		BackgroundColor: bgColor,
		BackgroundImage: bgImage,
	})
	if err != nil {
		return nil, err
	}

	outputPath := filepath.Join(outputDir, stillOutputName(input))
	if err := writePNG(outputPath, out); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.EncoderFailure, err)
	}

	elapsed := time.Since(start)
	rep.RunComplete(reporter.RunOutcome{InputPath: input, OutputPath: outputPath, Frames: 1, Elapsed: elapsed.Seconds()})

	return &ImageResult{OutputPath: outputPath, Elapsed: elapsed}, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

func toRGBBytes(src image.Image, w, h int) []byte {
	b := src.Bounds()
	out := make([]byte, w*h*3)
	sw, sh := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		sy := y * sh / h
		for x := 0; x < w; x++ {
			sx := x * sw / w
			r, g, bl, _ := src.At(b.Min.X+sx, b.Min.Y+sy).RGBA()
			i := (y*w + x) * 3
			out[i+0] = byte(r >> 8)
			out[i+1] = byte(g >> 8)
			out[i+2] = byte(bl >> 8)
		}
	}
	return out
}

// upsampleMask nearest-neighbor resizes a mask computed at pipeline
// resolution back to the original image's dimensions.
func upsampleMask(m frame.Mask, width, height uint32) frame.Mask {
	out := frame.Mask{Index: m.Index, Width: width, Height: height, Pix: make([]byte, width*height)}
	for y := uint32(0); y < height; y++ {
		sy := y * m.Height / height
		for x := uint32(0); x < width; x++ {
			sx := x * m.Width / width
			out.Pix[y*width+x] = m.Pix[sy*m.Width+sx]
		}
	}
	return out
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func stillOutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_cutout.png"
}
