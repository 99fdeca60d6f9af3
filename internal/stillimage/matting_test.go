package stillimage

import (
	"image"
	"testing"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/frame"
)

func TestBuildTrimapThresholds(t *testing.T) {
	mask := frame.Mask{Pix: []byte{0, 10, 128, 240, 255}}
	trimap := buildTrimap(mask, 240, 10)
	want := []byte{trimapBackground, trimapBackground, trimapUnknown, trimapForeground, trimapForeground}
	for i := range want {
		if trimap[i] != want[i] {
			t.Errorf("trimap[%d] = %d, want %d", i, trimap[i], want[i])
		}
	}
}

func TestErodeZeroIterationsNoop(t *testing.T) {
	trimap := []byte{trimapForeground, trimapBackground}
	got := erode(trimap, 2, 1, 0)
	if got[0] != trimapForeground || got[1] != trimapBackground {
		t.Errorf("erode with structSize=0 changed trimap: %v", got)
	}
}

func TestErodeWidensUnknownBand(t *testing.T) {
	// 3x1 row: foreground, unknown, background.
	trimap := []byte{trimapForeground, trimapUnknown, trimapBackground}
	got := erode(trimap, 3, 1, 1)
	if got[0] != trimapUnknown {
		t.Errorf("got[0] = %d, want trimapUnknown after eroding toward the unknown neighbor", got[0])
	}
	if got[2] != trimapUnknown {
		t.Errorf("got[2] = %d, want trimapUnknown after eroding toward the unknown neighbor", got[2])
	}
}

func TestAlphaMatteAssignsHardEdges(t *testing.T) {
	w, h := 4, 4
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	mask := frame.Mask{Width: uint32(w), Height: uint32(h), Pix: make([]byte, w*h)}
	for i := range mask.Pix {
		if i%2 == 0 {
			mask.Pix[i] = 255
		} else {
			mask.Pix[i] = 0
		}
	}
	cfg := config.Config{
		AlphaMattingForegroundThreshold: 240,
		AlphaMattingBackgroundThreshold: 10,
		AlphaMattingErodeStructureSize:  0,
	}
	alpha, err := AlphaMatte(img, mask, cfg)
	if err != nil {
		t.Fatalf("AlphaMatte returned error: %v", err)
	}
	if alpha.Bounds().Dx() != w || alpha.Bounds().Dy() != h {
		t.Fatalf("unexpected alpha bounds: %v", alpha.Bounds())
	}
	for i, want := range mask.Pix {
		if alpha.Pix[i] != want {
			t.Errorf("alpha.Pix[%d] = %d, want %d (hard edge)", i, alpha.Pix[i], want)
		}
	}
}

func TestAlphaMatteRejectsEmptyMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	_, err := AlphaMatte(img, frame.Mask{}, config.Config{})
	if err == nil {
		t.Error("expected error for an empty mask")
	}
}

func TestSolveColorLineDefaultsWithNoAnchors(t *testing.T) {
	rgb := rgbPlanes{r: []float64{0}, g: []float64{0}, b: []float64{0}}
	trimap := []byte{trimapUnknown}
	got := solveColorLine(rgb, trimap, 1, 1, 0, 0, 2)
	if got != 128 {
		t.Errorf("solveColorLine with no fg/bg anchors = %d, want 128", got)
	}
}

func TestSolveColorLineProjectsOntoColorLine(t *testing.T) {
	// 3x1: background black, unknown mid-gray, foreground white.
	w, h := 3, 1
	rgb := rgbPlanes{
		r: []float64{0, 128, 255},
		g: []float64{0, 128, 255},
		b: []float64{0, 128, 255},
	}
	trimap := []byte{trimapBackground, trimapUnknown, trimapForeground}
	got := solveColorLine(rgb, trimap, w, h, 1, 0, 2)
	if got < 100 || got > 160 {
		t.Errorf("solveColorLine for a mid-gray pixel = %d, want roughly mid-range", got)
	}
}
