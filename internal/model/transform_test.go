package model

import (
	"math"
	"testing"

	"github.com/five82/silhouette/internal/frame"
)

func TestToCHWFloatNormalizes(t *testing.T) {
	f := frame.Frame{Width: 2, Height: 1, Pix: []byte{
		255, 0, 128,
		0, 255, 64,
	}}
	out := toCHWFloat(f)
	if len(out) != 3*2*1 {
		t.Fatalf("len(out) = %d, want %d", len(out), 6)
	}

	want := func(x float32) float32 { return (x/255.0 - normalizeMean) / normalizeStd }
	plane := 2
	checks := []struct {
		got, want float32
	}{
		{out[0*plane+0], want(255)}, // R plane, pixel 0
		{out[1*plane+0], want(0)},   // G plane, pixel 0
		{out[2*plane+0], want(128)}, // B plane, pixel 0
		{out[0*plane+1], want(0)},   // R plane, pixel 1
		{out[1*plane+1], want(255)}, // G plane, pixel 1
		{out[2*plane+1], want(64)},  // B plane, pixel 1
	}
	for i, c := range checks {
		if math.Abs(float64(c.got-c.want)) > 1e-5 {
			t.Errorf("checks[%d]: got %v, want %v", i, c.got, c.want)
		}
	}
}

func TestMaskFromChannelRescales(t *testing.T) {
	plane := []float32{-1.0, 0.0, 1.0, 3.0}
	m := maskFromChannel(plane, 2, 2, 7)
	if m.Index != 7 || m.Width != 2 || m.Height != 2 {
		t.Fatalf("unexpected mask metadata: %+v", m)
	}
	// span = 4, min = -1: (v - min)/span * 255
	want := []byte{0, 63, 127, 255}
	for i := range want {
		diff := int(m.Pix[i]) - int(want[i])
		if diff < -2 || diff > 2 {
			t.Errorf("Pix[%d] = %d, want close to %d", i, m.Pix[i], want[i])
		}
	}
}

func TestMaskFromChannelConstantPlane(t *testing.T) {
	plane := []float32{0.5, 0.5, 0.5}
	m := maskFromChannel(plane, 3, 1, 0)
	for i, v := range m.Pix {
		if v != 0 {
			t.Errorf("Pix[%d] = %d, want 0 for zero-span plane", i, v)
		}
	}
}
