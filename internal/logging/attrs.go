package logging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"captionburn/internal/services"
)

type Attr = slog.Attr

func String(key string, value string) Attr { return slog.String(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Error records err under the "error" key.
func Error(err error) Attr {
	if err == nil {
		return slog.String(FieldError, "<nil>")
	}
	return slog.Any(FieldError, err)
}

// JobID tags a line with a burn job identifier.
func JobID(id string) Attr { return slog.String(FieldJobID, id) }

// FilePath tags a line with a file on disk.
func FilePath(path string) Attr { return slog.String(FieldPath, path) }

// HintFor suggests the operator action for a failure, keyed on its error class.
func HintFor(err error) string {
	switch {
	case err == nil:
		return defaultHint
	case errors.Is(err, services.ErrValidation):
		return "check caption timings, text, and the highlight colour"
	case errors.Is(err, services.ErrNotFound):
		return "install the caption font into paths.fonts_dir"
	case errors.Is(err, services.ErrConfiguration):
		return "run `captionburn config validate`"
	case errors.Is(err, services.ErrExternalTool):
		return "inspect the ffmpeg stderr tail at debug level"
	case errors.Is(err, services.ErrTransient):
		return "retry the upload; check disk space and the job database"
	default:
		return defaultHint
	}
}

const defaultHint = "check the daemon log for details"

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger returns logger tagged with component. A nil logger
// yields a no-op logger.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact. A missing hint is derived from the attached error.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logOperational(logger, slog.LevelWarn, msg, eventType, attrs)
}

// ErrorWithContext logs an error that always carries event_type and
// error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	logOperational(logger, slog.LevelError, msg, eventType, attrs)
}

func logOperational(logger *slog.Logger, level slog.Level, msg, eventType string, attrs []Attr) {
	if logger == nil {
		return
	}
	var (
		hasEvent, hasHint, hasImpact bool
		cause                        error
	)
	for _, a := range attrs {
		switch a.Key {
		case FieldEventType:
			hasEvent = true
		case FieldErrorHint:
			hasHint = true
		case FieldImpact:
			hasImpact = true
		case FieldError:
			if err, ok := a.Value.Any().(error); ok {
				cause = err
			}
		}
	}
	if !hasEvent {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !hasHint {
		attrs = append(attrs, String(FieldErrorHint, HintFor(cause)))
	}
	if level == slog.LevelWarn && !hasImpact {
		attrs = append(attrs, String(FieldImpact, "daemon keeps serving; this job may be incomplete"))
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
