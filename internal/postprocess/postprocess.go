// Package postprocess composites the grayscale matte-key intermediate
// video against its original source video into the five output modes the
// reference implementation supports, each its own ffmpeg filter graph: a
// standalone alpha video, an alpha GIF (with or without a flattened
// background), or an overlay onto a background video or still image. Every
// graph starts by pairing the source video's color with the matte key's
// luma via scale2ref+alphamerge, matching the reference's
// `ffmpeg -i video -i mask -filter_complex "[1:v][0:v]scale2ref...;alphamerge"`
// idiom.
package postprocess

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/util"
)

// Mode selects which composite pipeline to run.
type Mode int

const (
	// TransparentVideo re-encodes the alphamerged composite alone into an
	// alpha-capable container.
	TransparentVideo Mode = iota
	// TransparentGIF renders a palette-optimized animated GIF with alpha.
	TransparentGIF
	// TransparentGIFWithBackground flattens a background image under the
	// GIF before palette generation.
	TransparentGIFWithBackground
	// TransparentOverVideo overlays the alphamerged composite onto a
	// background video.
	TransparentOverVideo
	// TransparentOverImage overlays the alphamerged composite onto a still
	// background image, SAR-conformed first.
	TransparentOverImage
)

// Job describes one post-processing run.
type Job struct {
	Mode Mode

	VideoPath    string // Input: the original source video (RGB).
	MatteKeyPath string // Input: the grayscale matte-key intermediate from encodersink.

	BackgroundPath string // Required for *OverVideo, *OverImage, *WithBackground.
	OutputPath     string
	AlphaCodec     config.AlphaCodec
	PixelFmt       string // Explicit override; empty means derive from codec/output extension.
}

// Run executes the ffmpeg filter graph for j.Mode, using a scoped
// temporary directory for any intermediate files, cleaned up on every
// exit path.
func Run(ctx context.Context, j Job) error {
	if j.VideoPath == "" {
		return fmt.Errorf("%w: a source video path is required to alphamerge against the matte key", errs.PipelineConfig)
	}
	if needsBackground(j.Mode) && j.BackgroundPath == "" {
		return fmt.Errorf("%w: mode %v requires a background path", errs.PipelineConfig, j.Mode)
	}

	scratchParent := filepath.Dir(j.OutputPath)
	if scratchParent == "" {
		scratchParent = "."
	}
	util.CheckDiskSpace(scratchParent, nil)

	tmp, err := util.CreateTempDir(os.TempDir(), "silhouette-post")
	if err != nil {
		return fmt.Errorf("%w: creating scratch dir: %v", errs.EncoderFailure, err)
	}
	defer func() {
		if rmErr := tmp.Cleanup(); rmErr != nil {
			// Best-effort: a locked file on a platform with stricter
			// delete semantics should not mask the real pipeline result.
			_ = rmErr
		}
	}()

	switch j.Mode {
	case TransparentVideo:
		return transparentVideo(ctx, j)
	case TransparentGIF:
		return transparentGIF(ctx, j)
	case TransparentGIFWithBackground:
		return transparentGIFWithBackground(ctx, j, tmp.Path())
	case TransparentOverVideo:
		return transparentOverVideo(ctx, j)
	case TransparentOverImage:
		return transparentOverImage(ctx, j, tmp.Path())
	default:
		return fmt.Errorf("%w: unknown post-process mode %v", errs.PipelineConfig, j.Mode)
	}
}

func needsBackground(m Mode) bool {
	switch m {
	case TransparentGIFWithBackground, TransparentOverVideo, TransparentOverImage:
		return true
	default:
		return false
	}
}

// alphaMergeChain builds the filter_complex fragment that turns input
// videoIdx's RGB and input matteIdx's grayscale luma into a single alpha
// stream labeled [alpha]: the matte key is scaled to the source video's
// size (scale2ref), then alphamerge treats it as the alpha channel.
func alphaMergeChain(videoIdx, matteIdx int) string {
	return fmt.Sprintf("[%d:v][%d:v]scale2ref[mask][main];[main][mask]alphamerge[alpha]", matteIdx, videoIdx)
}

// codecFor resolves the alpha codec to use: an explicit choice is passed
// through, and "auto" (or unset) derives the codec from the output
// container extension, matching the reference's per-extension policy
// (.webm gets VP9, everything else gets QTRLE).
func codecFor(c config.AlphaCodec, outputPath string) config.AlphaCodec {
	if c != config.AlphaCodecAuto && c != "" {
		return c
	}
	if strings.EqualFold(filepath.Ext(outputPath), ".webm") {
		return config.AlphaCodecVP9
	}
	return config.AlphaCodecQTRLE
}

// codecArgs returns the ffmpeg output args selecting codec and pixel
// format. pixFmtOverride, when set, replaces the codec's default alpha
// pixel format (config.Config.PixelFmt's escape hatch).
func codecArgs(codec config.AlphaCodec, pixFmtOverride string) []string {
	switch codec {
	case config.AlphaCodecVP9:
		pixFmt := "yuva420p"
		if pixFmtOverride != "" {
			pixFmt = pixFmtOverride
		}
		return []string{"-c:v", string(config.AlphaCodecVP9), "-pix_fmt", pixFmt}
	case config.AlphaCodecProResKS:
		pixFmt := "yuva444p10le"
		if pixFmtOverride != "" {
			pixFmt = pixFmtOverride
		}
		return []string{"-c:v", string(config.AlphaCodecProResKS), "-profile:v", "4", "-pix_fmt", pixFmt}
	default:
		args := []string{"-c:v", string(config.AlphaCodecQTRLE)}
		if pixFmtOverride != "" {
			args = append(args, "-pix_fmt", pixFmtOverride)
		}
		return args
	}
}

// transparentVideo alphamerges the source video with the matte key and
// re-encodes the result alone, letting the codec choice govern the
// alpha-capable container.
func transparentVideo(ctx context.Context, j Job) error {
	args := []string{
		"-i", j.VideoPath,
		"-i", j.MatteKeyPath,
		"-filter_complex", alphaMergeChain(0, 1),
		"-map", "[alpha]",
	}
	args = append(args, codecArgs(codecFor(j.AlphaCodec, j.OutputPath), j.PixelFmt)...)
	args = append(args, j.OutputPath)
	return run(ctx, args...)
}

// transparentGIF alphamerges the source video with the matte key, then
// builds an alpha-aware palette from the result, matching the reference's
// scale2ref;alphamerge;fps=10;palettegen;paletteuse graph.
func transparentGIF(ctx context.Context, j Job) error {
	filter := alphaMergeChain(0, 1) +
		";[alpha]fps=10,split[s0][s1];[s0]palettegen=reserve_transparent=1[p];[s1][p]paletteuse"
	return run(ctx,
		"-i", j.VideoPath,
		"-i", j.MatteKeyPath,
		"-filter_complex", filter,
		j.OutputPath,
	)
}

// transparentGIFWithBackground alphamerges the source video with the matte
// key, flattens the background under the result, then runs the same
// palette pipeline as transparentGIF.
func transparentGIFWithBackground(ctx context.Context, j Job, tmp string) error {
	flattened := filepath.Join(tmp, "flattened.mp4")
	filter := alphaMergeChain(1, 2) + ";[0:v][alpha]overlay=format=auto"
	if err := run(ctx,
		"-i", j.BackgroundPath,
		"-i", j.VideoPath,
		"-i", j.MatteKeyPath,
		"-filter_complex", filter,
		flattened,
	); err != nil {
		return err
	}

	paletteFilter := "fps=10,split[s0][s1];[s0]palettegen[p];[s1][p]paletteuse"
	return run(ctx, "-i", flattened,
		"-filter_complex", paletteFilter,
		j.OutputPath,
	)
}

// transparentOverVideo alphamerges the source video with the matte key,
// scales the background video to match, and overlays the composite onto it.
func transparentOverVideo(ctx context.Context, j Job) error {
	filter := alphaMergeChain(1, 2) + ";[0:v][alpha]scale2ref[bg][fg];[bg][fg]overlay=format=auto"
	args := []string{
		"-i", j.BackgroundPath,
		"-i", j.VideoPath,
		"-i", j.MatteKeyPath,
		"-filter_complex", filter,
	}
	args = append(args, codecArgs(codecFor(j.AlphaCodec, j.OutputPath), j.PixelFmt)...)
	args = append(args, j.OutputPath)
	return run(ctx, args...)
}

// transparentOverImage conforms the background image's sample aspect
// ratio in a prepass, then alphamerges the source video with the matte key
// and overlays the result onto it, following the reference's two-stage
// scale2ref approach for still backgrounds.
func transparentOverImage(ctx context.Context, j Job, tmp string) error {
	conformed := filepath.Join(tmp, "conformed.png")
	if err := run(ctx,
		"-i", j.VideoPath,
		"-i", j.BackgroundPath,
		"-filter_complex", "[1:v][0:v]scale2ref[bg][fg]",
		"-map", "[bg]",
		"-frames:v", "1",
		conformed,
	); err != nil {
		return err
	}

	filter := alphaMergeChain(1, 2) + ";[0:v][alpha]overlay=format=auto"
	return run(ctx,
		"-loop", "1",
		"-i", conformed,
		"-i", j.VideoPath,
		"-i", j.MatteKeyPath,
		"-filter_complex", filter,
		"-shortest",
		j.OutputPath,
	)
}

func run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", append([]string{"-y", "-v", "error"}, args...)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: ffmpeg %v: %v (%s)", errs.EncoderFailure, args, err, out)
	}
	return nil
}
