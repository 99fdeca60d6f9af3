// Package ffmpegio wraps the ffprobe/ffmpeg subprocesses used to read
// source video metadata and to demux, decode, and rescale frames.
package ffmpegio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/five82/silhouette/internal/errs"
)

// VideoInfo is the subset of probed metadata the pipeline needs.
type VideoInfo struct {
	Width  int
	Height int

	// FPSNum/FPSDen carry the exact rational frame rate ffprobe reported,
	// so the encoder's -r flag can reproduce it exactly (e.g. 30000/1001)
	// instead of baking in a lossy decimal approximation. FrameRate is the
	// derived float, kept for logging/reporting only.
	FPSNum    int64
	FPSDen    int64
	FrameRate float64

	TotalFrames int
	HasAudio    bool
}

type probeFormat struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType     string `json:"codec_type"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	RFrameRate    string `json:"r_frame_rate"`
	AvgFrameRate  string `json:"avg_frame_rate"`
	NbReadPackets string `json:"nb_read_packets"`
}

// Probe runs ffprobe against the input and returns its video metadata. It
// issues a second, packet-counting pass for TotalFrames because the
// container's frame-count tag is frequently absent or wrong.
func Probe(ctx context.Context, path string) (VideoInfo, error) {
	var info VideoInfo

	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "stream=codec_type,width,height,r_frame_rate,avg_frame_rate",
		"-of", "json",
		path,
	).Output()
	if err != nil {
		return info, fmt.Errorf("%w: ffprobe failed on %s: %v", errs.InputFormat, path, err)
	}

	var parsed probeFormat
	if err := json.Unmarshal(out, &parsed); err != nil {
		return info, fmt.Errorf("%w: parsing ffprobe output: %v", errs.InputFormat, err)
	}

	var video *probeStream
	for i := range parsed.Streams {
		if parsed.Streams[i].CodecType == "video" && video == nil {
			video = &parsed.Streams[i]
		}
		if parsed.Streams[i].CodecType == "audio" {
			info.HasAudio = true
		}
	}
	if video == nil {
		return info, fmt.Errorf("%w: %s has no video stream", errs.InputFormat, path)
	}

	info.Width = video.Width
	info.Height = video.Height

	num, den, err := parseFrameRateRational(video.AvgFrameRate)
	if err != nil || num == 0 {
		num, den, err = parseFrameRateRational(video.RFrameRate)
	}
	if err != nil || num == 0 {
		return info, fmt.Errorf("%w: could not determine frame rate for %s", errs.InputFormat, path)
	}
	info.FPSNum = num
	info.FPSDen = den
	info.FrameRate = float64(num) / float64(den)

	count, err := countPackets(ctx, path)
	if err != nil {
		return info, err
	}
	info.TotalFrames = count

	return info, nil
}

// parseFrameRateRational parses ffprobe's "num/den" rational frame rate
// strings into their integer numerator and denominator, preserving the
// exact rational instead of collapsing it to a float. A bare integer
// string (no "/") is treated as num/1.
func parseFrameRateRational(s string) (num, den int64, err error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		return n, 1, nil
	}
	num, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	den, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	if den == 0 {
		return 0, 0, fmt.Errorf("invalid frame rate denominator %q", parts[1])
	}
	return num, den, nil
}

// parseFrameRate parses ffprobe's "num/den" rational frame rate strings
// into a float, for logging and display only; encoder pacing uses
// parseFrameRateRational's exact numerator/denominator instead.
func parseFrameRate(s string) (float64, error) {
	num, den, err := parseFrameRateRational(s)
	if err != nil {
		return 0, err
	}
	return float64(num) / float64(den), nil
}

// countPackets runs a dedicated ffprobe pass that counts video packets,
// the most reliable total-frame source across containers that omit or
// misreport nb_frames.
func countPackets(ctx context.Context, path string) (int, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-count_packets",
		"-show_entries", "stream=nb_read_packets",
		"-of", "csv=p=0",
		path,
	)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: counting packets in %s: %v (%s)", errs.InputFormat, path, err, stderr.String())
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("%w: parsing packet count for %s: %v", errs.InputFormat, path, err)
	}
	return count, nil
}
