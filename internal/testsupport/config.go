package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"captionburn/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
	font    bool
}

// NewConfig produces a config seeded with unique temp directories per test.
// The configured font file exists unless WithoutFont is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfgVal.Paths.OutputsDir = filepath.Join(base, "outputs")
	cfgVal.Paths.FontsDir = filepath.Join(base, "fonts")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Notifications.NtfyTopic = ""
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
		font:    true,
	}
	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if builder.font {
		WriteFile(t, builder.cfg.FontPath(), 64)
	}
	return builder.cfg
}

// WithoutFont leaves the fonts directory empty.
func WithoutFont() ConfigOption {
	return func(b *configBuilder) {
		b.font = false
	}
}

// WithAPIToken enables bearer authentication on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithPublicBaseURL sets the base used for returned output links.
func WithPublicBaseURL(base string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.PublicBaseURL = base
	}
}

// WithKeepSubtitleFile retains generated ASS files after transcoding.
func WithKeepSubtitleFile() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.KeepSubtitleFile = true
	}
}

// WithStubbedFFmpeg writes a stub ffmpeg that creates its output file, and
// points the config at it.
func WithStubbedFFmpeg() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.FFmpegBinary = writeStub(b, "ffmpeg",
			"#!/bin/sh\nfor last; do :; done\n"+filterProbe+
				"echo \"stub ffmpeg $*\" >&2\n: > \"$last\"\nexit 0\n")
	}
}

// WithFailingFFmpeg writes a stub ffmpeg that reports an error and exits 1.
func WithFailingFFmpeg(message string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcode.FFmpegBinary = writeStub(b, "ffmpeg",
			"#!/bin/sh\nfor last; do :; done\n"+filterProbe+"echo '"+message+"' >&2\nexit 1\n")
	}
}

// filterProbe answers `ffmpeg -hide_banner -filters` with a row for the ass filter.
const filterProbe = "if [ \"$last\" = \"-filters\" ]; then\n" +
	"  echo ' ... ass               V->V       Render ASS subtitles onto input video using the libass library.'\n" +
	"  exit 0\nfi\n"

func writeStub(b *configBuilder, name, script string) string {
	binDir := filepath.Join(b.baseDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		b.t.Fatalf("mkdir bin dir: %v", err)
	}
	target := filepath.Join(binDir, name)
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		b.t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.UploadsDir)
}
