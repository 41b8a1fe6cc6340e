package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"captionburn/internal/burn"
	"captionburn/internal/config"
	"captionburn/internal/jobs"
	"captionburn/internal/logging"
	"captionburn/internal/notifications"
)

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var videoPath string
	var captionsPath string
	var activeColor string
	var outputPath string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Burn captions into a local video without the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spans, err := loadCaptions(captionsPath, cmd.InOrStdin())
			if err != nil {
				return err
			}
			video, err := config.ExpandPath(strings.TrimSpace(videoPath))
			if err != nil {
				return fmt.Errorf("resolve video path: %w", err)
			}
			if _, err := os.Stat(video); err != nil {
				return fmt.Errorf("video %s: %w", video, err)
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr"},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			opts := []burn.Option{burn.WithNotifier(notifications.NewService(cfg))}
			if !noHistory {
				store, err := jobs.Open(cfg)
				if err != nil {
					return fmt.Errorf("open job history: %w", err)
				}
				defer store.Close()
				opts = append(opts, burn.WithStore(store))
			}

			job := burn.Job{
				VideoPath:   video,
				VideoName:   filepath.Base(video),
				Spans:       spans,
				ActiveColor: activeColor,
			}
			if target := strings.TrimSpace(outputPath); target != "" {
				if job.OutputPath, err = config.ExpandPath(target); err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
			}

			outcome, err := burn.NewProcessor(cfg, logger, opts...).Process(cmd.Context(), job)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job:      %s\n", outcome.JobID)
			fmt.Fprintf(out, "Output:   %s\n", outcome.OutputPath)
			fmt.Fprintf(out, "Events:   %d\n", outcome.Events)
			fmt.Fprintf(out, "Duration: %s\n", outcome.Duration.Round(10*time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Source video file")
	cmd.Flags().StringVar(&captionsPath, "captions", "", "Caption file (.json, .yaml) or - for JSON on stdin")
	cmd.Flags().StringVar(&activeColor, "color", "", "Highlight colour (defaults to style.default_active_color)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output video path (defaults to a generated name in paths.outputs_dir)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the job in the job history database")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("captions")
	return cmd
}
