// Package stillimage implements the single-image cutout path: compositing
// a segmentation mask against the original image as a naive alpha cut, a
// locally alpha-matted cut, a raw mask export, or a background
// replacement, matching the reference implementation's bg.py remove().
package stillimage

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/frame"
)

// Options controls which compositing path Cutout takes.
type Options struct {
	OnlyMask        bool
	AlphaMatting    bool
	Matting         config.Config // Reuses the AlphaMatting* tunables.
	BackgroundColor color.Color   // Optional flat background fill.
	BackgroundImage image.Image   // Optional background image, takes priority over BackgroundColor.
}

// Cutout produces the final output image for src given mask and opts.
func Cutout(src image.Image, mask frame.Mask, opts Options) (image.Image, error) {
	if opts.OnlyMask {
		return maskToGray(mask), nil
	}

	var alpha *image.Gray
	if opts.AlphaMatting {
		refined, err := AlphaMatte(src, mask, opts.Matting)
		if err != nil {
			// The reference implementation falls back to the naive cutout
			// if matting fails (e.g. a degenerate trimap on a flat image).
			alpha = maskToGray(mask)
		} else {
			alpha = refined
		}
	} else {
		alpha = maskToGray(mask)
	}

	cut := naiveComposite(src, alpha)

	switch {
	case opts.BackgroundImage != nil:
		return compositeOverImage(cut, opts.BackgroundImage), nil
	case opts.BackgroundColor != nil:
		return compositeOverColor(cut, opts.BackgroundColor), nil
	default:
		return cut, nil
	}
}

// maskToGray converts a single-channel Mask into an *image.Gray of the
// same dimensions, used directly as an alpha channel.
func maskToGray(m frame.Mask) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, int(m.Width), int(m.Height)))
	copy(g.Pix, m.Pix)
	return g
}

// naiveComposite pastes src through alpha onto a transparent canvas,
// mirroring Image.composite(image, newBackground, mask) in the reference.
func naiveComposite(src image.Image, alpha *image.Gray) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, src, image.Point{}, draw.Src)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := alpha.GrayAt(x-b.Min.X, y-b.Min.Y).Y
			i := out.PixOffset(x, y)
			out.Pix[i+3] = a
		}
	}
	return out
}

// compositeOverColor flattens cut onto a solid background color.
func compositeOverColor(cut *image.NRGBA, bg color.Color) image.Image {
	b := cut.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, b, cut, b.Min, draw.Over)
	return out
}

// compositeOverImage flattens cut onto a background image, cropped to
// cut's bounds. The background is not tiled: where it is smaller than cut,
// the uncovered area keeps only cut's own pixels.
func compositeOverImage(cut *image.NRGBA, bg image.Image) image.Image {
	b := cut.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, bg, bg.Bounds().Min, draw.Src)
	draw.Draw(out, b, cut, b.Min, draw.Over)
	return out
}
