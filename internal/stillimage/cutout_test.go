package stillimage

import (
	"image"
	"image/color"
	"testing"

	"github.com/five82/silhouette/internal/frame"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCutoutOnlyMaskReturnsGray(t *testing.T) {
	src := solidImage(2, 2, color.White)
	mask := frame.Mask{Width: 2, Height: 2, Pix: []byte{0, 64, 128, 255}}

	out, err := Cutout(src, mask, Options{OnlyMask: true})
	if err != nil {
		t.Fatalf("Cutout returned error: %v", err)
	}
	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("Cutout(OnlyMask) returned %T, want *image.Gray", out)
	}
	for i, want := range mask.Pix {
		if gray.Pix[i] != want {
			t.Errorf("Pix[%d] = %d, want %d", i, gray.Pix[i], want)
		}
	}
}

func TestCutoutNaiveAppliesMaskAsAlpha(t *testing.T) {
	src := solidImage(1, 1, color.White)
	mask := frame.Mask{Width: 1, Height: 1, Pix: []byte{128}}

	out, err := Cutout(src, mask, Options{})
	if err != nil {
		t.Fatalf("Cutout returned error: %v", err)
	}
	nrgba, ok := out.(*image.NRGBA)
	if !ok {
		t.Fatalf("Cutout() returned %T, want *image.NRGBA", out)
	}
	_, _, _, a := nrgba.At(0, 0).RGBA()
	if got := uint8(a >> 8); got != 128 {
		t.Errorf("alpha = %d, want 128", got)
	}
}

func TestCutoutCompositesOverBackgroundColor(t *testing.T) {
	src := solidImage(1, 1, color.White)
	mask := frame.Mask{Width: 1, Height: 1, Pix: []byte{255}} // fully opaque foreground

	out, err := Cutout(src, mask, Options{BackgroundColor: color.Black})
	if err != nil {
		t.Fatalf("Cutout returned error: %v", err)
	}
	r, g, b, _ := out.At(0, 0).RGBA()
	// Fully opaque foreground should dominate, leaving white, not black.
	if r>>8 < 200 || g>>8 < 200 || b>>8 < 200 {
		t.Errorf("expected opaque foreground to show through, got rgb(%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
