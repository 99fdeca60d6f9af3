package postprocess

import (
	"context"
	"testing"

	"github.com/five82/silhouette/internal/config"
)

func TestNeedsBackground(t *testing.T) {
	cases := []struct {
		mode Mode
		want bool
	}{
		{TransparentVideo, false},
		{TransparentGIF, false},
		{TransparentGIFWithBackground, true},
		{TransparentOverVideo, true},
		{TransparentOverImage, true},
	}
	for _, tc := range cases {
		if got := needsBackground(tc.mode); got != tc.want {
			t.Errorf("needsBackground(%v) = %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestCodecForDefaultsToQTRLEForNonWebm(t *testing.T) {
	if got := codecFor(config.AlphaCodecAuto, "out.mov"); got != config.AlphaCodecQTRLE {
		t.Errorf("codecFor(Auto, .mov) = %q, want %q", got, config.AlphaCodecQTRLE)
	}
	if got := codecFor("", "out.mov"); got != config.AlphaCodecQTRLE {
		t.Errorf("codecFor(\"\", .mov) = %q, want %q", got, config.AlphaCodecQTRLE)
	}
}

func TestCodecForDerivesVP9ForWebm(t *testing.T) {
	if got := codecFor(config.AlphaCodecAuto, "out.webm"); got != config.AlphaCodecVP9 {
		t.Errorf("codecFor(Auto, .webm) = %q, want %q", got, config.AlphaCodecVP9)
	}
	if got := codecFor(config.AlphaCodecAuto, "OUT.WEBM"); got != config.AlphaCodecVP9 {
		t.Errorf("codecFor(Auto, .WEBM) = %q, want %q", got, config.AlphaCodecVP9)
	}
}

func TestCodecForPassesThroughExplicitChoice(t *testing.T) {
	if got := codecFor(config.AlphaCodecVP9, "out.mov"); got != config.AlphaCodecVP9 {
		t.Errorf("codecFor(VP9, .mov) = %q, want %q", got, config.AlphaCodecVP9)
	}
}

func TestCodecArgsVP9DefaultsPixFmt(t *testing.T) {
	got := codecArgs(config.AlphaCodecVP9, "")
	want := []string{"-c:v", "libvpx-vp9", "-pix_fmt", "yuva420p"}
	assertStringSlice(t, got, want)
}

func TestCodecArgsProResKSIncludesProfile(t *testing.T) {
	got := codecArgs(config.AlphaCodecProResKS, "")
	want := []string{"-c:v", "prores_ks", "-profile:v", "4", "-pix_fmt", "yuva444p10le"}
	assertStringSlice(t, got, want)
}

func TestCodecArgsHonorsPixelFmtOverride(t *testing.T) {
	got := codecArgs(config.AlphaCodecVP9, "yuva444p")
	want := []string{"-c:v", "libvpx-vp9", "-pix_fmt", "yuva444p"}
	assertStringSlice(t, got, want)
}

func TestCodecArgsQTRLEOmitsPixFmtByDefault(t *testing.T) {
	got := codecArgs(config.AlphaCodecQTRLE, "")
	want := []string{"-c:v", "qtrle"}
	assertStringSlice(t, got, want)
}

func assertStringSlice(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d (got=%v, want=%v)", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunRequiresVideoPath(t *testing.T) {
	err := Run(context.Background(), Job{Mode: TransparentVideo, MatteKeyPath: "matte.mov", OutputPath: "out.mov"})
	if err == nil {
		t.Error("expected Run to reject a job with no source video path")
	}
}

func TestRunRequiresBackgroundForDependentModes(t *testing.T) {
	err := Run(context.Background(), Job{
		Mode:         TransparentOverVideo,
		VideoPath:    "video.mp4",
		MatteKeyPath: "matte.mov",
		OutputPath:   "out.mov",
	})
	if err == nil {
		t.Error("expected Run to reject a background-dependent mode with no background path")
	}
}

func TestRunRejectsUnknownMode(t *testing.T) {
	err := Run(context.Background(), Job{
		Mode:         Mode(999),
		VideoPath:    "video.mp4",
		MatteKeyPath: "matte.mov",
		OutputPath:   "out.mov",
	})
	if err == nil {
		t.Error("expected Run to reject an unknown mode")
	}
}

func TestAlphaMergeChainReferencesGivenInputIndices(t *testing.T) {
	got := alphaMergeChain(0, 1)
	want := "[1:v][0:v]scale2ref[mask][main];[main][mask]alphamerge[alpha]"
	if got != want {
		t.Errorf("alphaMergeChain(0, 1) = %q, want %q", got, want)
	}
}
