package pipeline

import (
	"testing"

	"github.com/five82/silhouette/internal/config"
)

func TestEffectiveFrameRateUsesOverride(t *testing.T) {
	cfg := &config.Config{FrameRateOverride: 24}
	num, den := effectiveFrameRate(cfg, 30000, 1001)
	if num != 24 || den != 1 {
		t.Errorf("effectiveFrameRate() = %d/%d, want 24/1", num, den)
	}
}

func TestEffectiveFrameRateFallsBackToProbed(t *testing.T) {
	cfg := &config.Config{FrameRateOverride: -1}
	num, den := effectiveFrameRate(cfg, 30000, 1001)
	if num != 30000 || den != 1001 {
		t.Errorf("effectiveFrameRate() = %d/%d, want 30000/1001", num, den)
	}
}

func TestMattePrefixStripsExtension(t *testing.T) {
	if got := mattePrefix("/in/clip.mp4"); got != "clip_matte" {
		t.Errorf("mattePrefix() = %q, want %q", got, "clip_matte")
	}
}

func TestMattePrefixHandlesNoExtension(t *testing.T) {
	if got := mattePrefix("clip"); got != "clip_matte" {
		t.Errorf("mattePrefix() = %q, want %q", got, "clip_matte")
	}
}
