package deps

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 5 * time.Second

// FFmpeg describes the transcoder requirement: binary (default "ffmpeg") must
// resolve and be built with the libass "ass" filter the overlay depends on.
func FFmpeg(binary string) Requirement {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return Requirement{
		Name:        "FFmpeg",
		Command:     binary,
		Description: "Required for subtitle burn-in",
		Probe:       probeASSFilter,
	}
}

func probeASSFilter(ctx context.Context, resolved string) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	output, err := exec.CommandContext(probeCtx, resolved, "-hide_banner", "-filters").Output()
	if err != nil {
		return fmt.Errorf("filter probe failed: %w", err)
	}
	if !hasFilter(output, "ass") {
		return errors.New("ass filter unavailable (ffmpeg built without libass)")
	}
	return nil
}

// hasFilter scans `ffmpeg -filters` output, whose rows look like
// " T.C ass               V->V       Render ASS subtitles ...".
func hasFilter(output []byte, name string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
