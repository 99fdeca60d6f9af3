package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsVideoAndImageFile(t *testing.T) {
	cases := []struct {
		path      string
		wantVideo bool
		wantImage bool
	}{
		{"clip.MP4", true, false},
		{"clip.mov", true, false},
		{"photo.PNG", false, true},
		{"photo.webp", false, true},
		{"notes.txt", false, false},
	}
	for _, tc := range cases {
		if got := IsVideoFile(tc.path); got != tc.wantVideo {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tc.path, got, tc.wantVideo)
		}
		if got := IsImageFile(tc.path); got != tc.wantImage {
			t.Errorf("IsImageFile(%q) = %v, want %v", tc.path, got, tc.wantImage)
		}
	}
}

func TestFindMediaFilesSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	names := []string{"b.mp4", "A.png", "c.txt", ".hidden.mp4"}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir.mp4"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindMediaFiles(dir)
	if err != nil {
		t.Fatalf("FindMediaFiles returned error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "A.png"),
		filepath.Join(dir, "b.mp4"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFindMediaFilesEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindMediaFiles(dir); err == nil {
		t.Error("expected error for directory with no media files")
	}
}

func TestFindMediaFilesMissingDir(t *testing.T) {
	if _, err := FindMediaFiles(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
