package ffmpegio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/frame"
)

// Source demuxes and decodes a video into rgb24 frames rescaled to the
// pipeline height, streaming them out over a channel. It does not buffer
// the whole video in memory: ffmpeg's stdout pipe applies its own
// backpressure once the frame buffer downstream stops draining.
type Source struct {
	Info   VideoInfo
	Width  uint32
	Height uint32

	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// Open starts the decode subprocess for path, rescaled to pipelineHeight
// with aspect preserved. frameLimit <= 0 means unlimited.
func Open(ctx context.Context, path string, pipelineHeight uint32, frameLimit int) (*Source, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	scaledWidth := int(float64(info.Width) * float64(pipelineHeight) / float64(info.Height))
	if scaledWidth%2 != 0 {
		scaledWidth++
	}

	args := []string{"-v", "error", "-i", path}
	if frameLimit > 0 {
		args = append(args, "-frames:v", fmt.Sprintf("%d", frameLimit))
	}
	args = append(args,
		"-vf", fmt.Sprintf("scale=%d:%d", scaledWidth, pipelineHeight),
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"pipe:1",
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: opening decode pipe: %v", errs.InputFormat, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting decoder for %s: %v", errs.InputFormat, path, err)
	}

	return &Source{
		Info:   info,
		Width:  uint32(scaledWidth),
		Height: pipelineHeight,
		cmd:    cmd,
		stdout: stdout,
	}, nil
}

// Frames returns a channel of decoded frames, closed when the subprocess's
// stdout reaches EOF or ctx is cancelled. Errors are reported on errc.
func (s *Source) Frames(ctx context.Context) (<-chan frame.Frame, <-chan error) {
	out := make(chan frame.Frame)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		frameSize := int(s.Width) * int(s.Height) * 3
		reader := bufio.NewReaderSize(s.stdout, frameSize)
		buf := make([]byte, frameSize)
		index := 0

		for {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}

			if _, err := io.ReadFull(reader, buf); err != nil {
				if err == io.EOF || err == io.ErrUnexpectedEOF {
					break
				}
				errc <- fmt.Errorf("%w: reading decoded frame %d: %v", errs.InputFormat, index, err)
				return
			}

			pix := make([]byte, frameSize)
			copy(pix, buf)

			f := frame.Frame{Index: index, Width: s.Width, Height: s.Height, Pix: pix}
			select {
			case out <- f:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
			index++
		}

		if err := s.cmd.Wait(); err != nil {
			errc <- fmt.Errorf("%w: decoder exited: %v", errs.InputFormat, err)
		}
	}()

	return out, errc
}

// Close terminates the decode subprocess if still running.
func (s *Source) Close() error {
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return nil
}
