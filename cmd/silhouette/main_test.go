package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/postprocess"
	"github.com/five82/silhouette/internal/reporter"
)

func TestVariantFlagSetRejectsUnknown(t *testing.T) {
	var v variantFlag
	if err := v.Set("bogus"); err == nil {
		t.Error("expected Set to reject an unknown variant")
	}
	if err := v.Set("u2netp"); err != nil {
		t.Errorf("Set(u2netp) returned error: %v", err)
	}
	if v.String() != "u2netp" {
		t.Errorf("String() = %q, want %q", v.String(), "u2netp")
	}
}

func TestParseModeKnownAndUnknown(t *testing.T) {
	cases := []struct {
		in   string
		want postprocess.Mode
	}{
		{"transparent-video", postprocess.TransparentVideo},
		{"transparent-gif", postprocess.TransparentGIF},
		{"transparent-gif-bg", postprocess.TransparentGIFWithBackground},
		{"transparent-over-video", postprocess.TransparentOverVideo},
		{"transparent-over-image", postprocess.TransparentOverImage},
	}
	for _, tc := range cases {
		got, err := parseMode(tc.in)
		if err != nil {
			t.Errorf("parseMode(%q) returned error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("parseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	if _, err := parseMode("not-a-mode"); err == nil {
		t.Error("expected parseMode to reject an unknown mode")
	}
}

func TestProcessBatchFilesRecordsPerFileOutcome(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig("", "", "")
	files := []string{
		filepath.Join(dir, "missing-a.png"),
		filepath.Join(dir, "missing-b.png"),
		filepath.Join(dir, "missing-c.png"),
	}

	results := processBatchFiles(context.Background(), cfg, files, dir, reporter.NullReporter{}, 2)

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.Path != files[i] {
			t.Errorf("results[%d].Path = %q, want %q (order must match input order)", i, r.Path, files[i])
		}
		if r.Succeeded {
			t.Errorf("results[%d] should have failed for a nonexistent input file", i)
		}
		if r.Error == "" {
			t.Errorf("results[%d].Error should be populated on failure", i)
		}
	}
}

func TestProcessBatchFilesEmptyInput(t *testing.T) {
	cfg := config.NewConfig("", "", "")
	results := processBatchFiles(context.Background(), cfg, nil, t.TempDir(), reporter.NullReporter{}, 1)
	if len(results) != 0 {
		t.Errorf("got %d results for empty input, want 0", len(results))
	}
}
