package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStyle(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if c.Jobs.RetentionDays < 0 {
		return errors.New("jobs.retention_days must be >= 0")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	for key, value := range map[string]string{
		"paths.uploads_dir": c.Paths.UploadsDir,
		"paths.outputs_dir": c.Paths.OutputsDir,
		"paths.fonts_dir":   c.Paths.FontsDir,
		"paths.log_dir":     c.Paths.LogDir,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Paths.PublicBaseURL != "" {
		parsed, err := url.Parse(c.Paths.PublicBaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("paths.public_base_url must be an absolute URL, got %q", c.Paths.PublicBaseURL)
		}
	}
	return nil
}

func (c *Config) validateStyle() error {
	if strings.ContainsAny(c.Style.FontFamily, ",\n\r") {
		return errors.New("style.font_family must not contain commas or line breaks")
	}
	if c.Style.FontFile != filepath.Base(c.Style.FontFile) {
		return errors.New("style.font_file must be a file name inside paths.fonts_dir")
	}
	if strings.ContainsAny(c.Style.DefaultActiveColor, ",{}\\\n\r") {
		return errors.New("style.default_active_color contains characters not allowed in an ASS colour")
	}
	return nil
}

func (c *Config) validateTranscode() error {
	if c.Transcode.TimeoutSeconds < 0 {
		return errors.New("transcode.timeout_seconds must be >= 0")
	}
	if c.Transcode.MaxUploadMB <= 0 {
		return errors.New("transcode.max_upload_mb must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}
