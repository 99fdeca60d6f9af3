// Package encodersink streams ordered masks into an ffmpeg subprocess that
// encodes them into the grayscale matte-key intermediate video.
//
// Construction is lazy: the subprocess is not spawned until the first
// mask's dimensions are known, mirroring the reference implementation's
// matte_key, which builds its ffmpeg argv only once frame.shape[1] is
// available from the first decoded frame.
package encodersink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"

	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/frame"
)

// Sink writes ordered masks as raw 8-bit grayscale frames to an ffmpeg
// encoder subprocess over stdin. It carries no original pixel data: the
// matte-key intermediate is the segmentation mask alone, and any
// compositing with the source video happens downstream in
// internal/postprocess.
type Sink struct {
	outputPath string
	fpsNum     int64
	fpsDen     int64

	once   sync.Once
	initEr error
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	writer *bufio.Writer
}

// New creates a Sink that writes the grayscale matte-key intermediate to
// outputPath once WriteMask encodes the first mask, pacing the encoder's
// -r flag by the rational frame rate fpsNum/fpsDen.
func New(outputPath string, fpsNum, fpsDen int64) *Sink {
	return &Sink{outputPath: outputPath, fpsNum: fpsNum, fpsDen: fpsDen}
}

// WriteMask streams mask.Pix to the encoder as a single-channel grayscale
// frame, starting the subprocess on the first call.
func (s *Sink) WriteMask(ctx context.Context, mask frame.Mask) error {
	s.once.Do(func() {
		s.initEr = s.start(mask.Width, mask.Height)
	})
	if s.initEr != nil {
		return s.initEr
	}

	n, err := s.writer.Write(mask.Pix)
	if err != nil || n != len(mask.Pix) {
		return fmt.Errorf("%w: writing frame %d to encoder stdin: %v", errs.EncoderFailure, mask.Index, err)
	}
	return nil
}

func (s *Sink) start(width, height uint32) error {
	cmd := exec.Command("ffmpeg",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d/%d", s.fpsNum, s.fpsDen),
		"-i", "pipe:0",
		"-vcodec", "mpeg4",
		s.outputPath,
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: opening encoder stdin: %v", errs.EncoderFailure, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting encoder subprocess: %v", errs.EncoderFailure, err)
	}
	s.cmd = cmd
	s.stdin = stdin
	s.writer = bufio.NewWriterSize(stdin, 1<<20)
	return nil
}

// Close flushes, closes stdin, and waits for the encoder subprocess to
// exit, reporting a non-zero exit as EncoderFailure.
func (s *Sink) Close() error {
	if s.stdin == nil {
		return nil
	}
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("%w: flushing encoder stdin: %v", errs.EncoderFailure, err)
	}
	if err := s.stdin.Close(); err != nil {
		return fmt.Errorf("%w: closing encoder stdin: %v", errs.EncoderFailure, err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: encoder exited non-zero: %v", errs.EncoderFailure, err)
	}
	return nil
}
