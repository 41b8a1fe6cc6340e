package deps

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheck(t *testing.T) {
	present := writeScript(t, t.TempDir(), "present", "exit 0\n")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank"},
		{Name: "Rejected", Command: present, Probe: func(context.Context, string) error {
			return errors.New("too old")
		}},
	}

	results := Check(context.Background(), reqs...)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
	if results[3].Available || results[3].Detail != "too old" || results[3].Command != present {
		t.Fatalf("expected probe failure to be reported, got %#v", results[3])
	}
}

func TestCheckFFmpeg(t *testing.T) {
	dir := t.TempDir()
	withLibass := writeScript(t, dir, "ffmpeg-ok", `cat <<'OUT'
Filters:
  T.. = Timeline support
 ... aresample         A->A       Resample audio data.
 ... ass               V->V       Render ASS subtitles onto input video using the libass library.
OUT
`)
	withoutLibass := writeScript(t, dir, "ffmpeg-bare", `echo " ... scale             V->V       Scale the input video size."
`)
	broken := writeScript(t, dir, "ffmpeg-broken", "exit 3\n")

	ctx := context.Background()
	checkFFmpeg := func(binary string) Status { return Check(ctx, FFmpeg(binary))[0] }
	if status := checkFFmpeg(withLibass); !status.Available {
		t.Fatalf("expected ffmpeg with libass to be available, got %q", status.Detail)
	}
	if status := checkFFmpeg(withoutLibass); status.Available || status.Detail == "" {
		t.Fatalf("expected missing ass filter to be reported, got %#v", status)
	}
	if status := checkFFmpeg(broken); status.Available {
		t.Fatal("expected failing probe to be unavailable")
	}
	if status := checkFFmpeg(filepath.Join(dir, "missing")); status.Available {
		t.Fatal("expected missing binary to be unavailable")
	}
}

func TestHasFilterMatchesWholeName(t *testing.T) {
	output := []byte(" ... assplit           V->N       Not the overlay filter.\n")
	if hasFilter(output, "ass") {
		t.Fatal("assplit should not match ass")
	}
}
