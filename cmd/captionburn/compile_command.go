package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"captionburn/internal/config"
	"captionburn/internal/fileutil"
	"captionburn/internal/subtitles"
)

func newCompileCommand(ctx *commandContext) *cobra.Command {
	var captionsPath string
	var fontFamily string
	var activeColor string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a caption file into an ASS track with per-word highlighting",
		Long: "Reads caption spans from a JSON or YAML file (or JSON on stdin with --captions -)\n" +
			"and writes the ASS script to --output or stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spans, err := loadCaptions(captionsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			style := styleFromFlags(cfg, fontFamily, activeColor)
			script, err := subtitles.Compile(spans, style)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), script)
				return err
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := fileutil.WriteFileAtomic(target, []byte(script), 0o644); err != nil {
				return fmt.Errorf("write subtitle track: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVar(&captionsPath, "captions", "", "Caption file (.json, .yaml) or - for JSON on stdin")
	cmd.Flags().StringVar(&fontFamily, "font", "", "Font family (defaults to style.font_family)")
	cmd.Flags().StringVar(&activeColor, "color", "", "Highlight colour (defaults to style.default_active_color)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the track to this path instead of stdout")
	_ = cmd.MarkFlagRequired("captions")
	return cmd
}

func loadCaptions(path string, stdin io.Reader) ([]subtitles.Span, error) {
	path = strings.TrimSpace(path)
	switch path {
	case "":
		return nil, errors.New("--captions is required")
	case "-":
		return subtitles.DecodeJSON(stdin)
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve captions path: %w", err)
	}
	return subtitles.LoadFile(expanded)
}

func styleFromFlags(cfg *config.Config, fontFamily, activeColor string) subtitles.Style {
	family := strings.TrimSpace(fontFamily)
	if family == "" {
		family = cfg.Style.FontFamily
	}
	color := strings.TrimSpace(activeColor)
	if color == "" {
		color = cfg.Style.DefaultActiveColor
	}
	style := subtitles.DefaultStyle(family, color)
	if cfg.Style.FontSize > 0 {
		style.FontSize = cfg.Style.FontSize
	}
	return style
}
