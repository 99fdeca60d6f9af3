package pipeline

import (
	"image"
	"image/color"
	"testing"

	"github.com/five82/silhouette/internal/frame"
)

func TestStillOutputNameAppendsCutoutSuffix(t *testing.T) {
	if got := stillOutputName("/in/photo.jpg"); got != "photo_cutout.png" {
		t.Errorf("stillOutputName() = %q, want %q", got, "photo_cutout.png")
	}
}

func TestStillOutputNameHandlesNoExtension(t *testing.T) {
	if got := stillOutputName("photo"); got != "photo_cutout.png" {
		t.Errorf("stillOutputName() = %q, want %q", got, "photo_cutout.png")
	}
}

func TestToRGBBytesSameSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 255})
	img.Set(0, 1, color.RGBA{R: 70, G: 80, B: 90, A: 255})
	img.Set(1, 1, color.RGBA{R: 100, G: 110, B: 120, A: 255})

	out := toRGBBytes(img, 2, 2)
	want := []byte{
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	}
	if len(out) != len(want) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(want))
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestUpsampleMaskNearestNeighbor(t *testing.T) {
	m := frame.Mask{Index: 3, Width: 2, Height: 1, Pix: []byte{0, 255}}
	out := upsampleMask(m, 4, 2)

	if out.Index != 3 {
		t.Errorf("Index = %d, want 3", out.Index)
	}
	if out.Width != 4 || out.Height != 2 {
		t.Fatalf("dims = %dx%d, want 4x2", out.Width, out.Height)
	}
	if len(out.Pix) != 8 {
		t.Fatalf("len(Pix) = %d, want 8", len(out.Pix))
	}
	// Left half of each row maps to source column 0 (value 0),
	// right half maps to source column 1 (value 255).
	for y := uint32(0); y < 2; y++ {
		row := out.Pix[y*4 : y*4+4]
		for x, v := range row {
			want := byte(0)
			if uint32(x) >= 2 {
				want = 255
			}
			if v != want {
				t.Errorf("Pix[%d][%d] = %d, want %d", y, x, v, want)
			}
		}
	}
}

func TestUpsampleMaskIdentity(t *testing.T) {
	m := frame.Mask{Width: 2, Height: 2, Pix: []byte{1, 2, 3, 4}}
	out := upsampleMask(m, 2, 2)
	for i, v := range out.Pix {
		if v != m.Pix[i] {
			t.Errorf("Pix[%d] = %d, want %d", i, v, m.Pix[i])
		}
	}
}
