package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"captionburn/internal/api"
	"captionburn/internal/config"
	"captionburn/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, dependency, and directory status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			daemonStatus, daemonErr := ctx.client().Status(cmd.Context())
			if daemonErr != nil && !errors.Is(daemonErr, api.ErrDaemonUnavailable) {
				return daemonErr
			}

			localDeps := api.FromDependencies(preflight.CheckSystemDeps(cmd.Context(), cfg))
			localChecks := api.FromChecks(preflight.RunAll(cmd.Context(), cfg))

			if asJSON {
				payload := map[string]any{
					"dependencies": localDeps,
					"checks":       localChecks,
				}
				if daemonStatus != nil {
					payload["daemon"] = daemonStatus
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printDaemonSection(out, ctx.apiAddress(), daemonStatus, colorize)
			fmt.Fprintln(out)
			printStyleSection(out, cfg, colorize)
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			for _, dep := range localDeps {
				detail := dep.Command
				if !dep.Available {
					detail = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, passKind(dep.Available, statusError), detail, colorize))
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Paths", colorize))
			for _, check := range localChecks {
				fmt.Fprintln(out, renderStatusLine(check.Name, passKind(check.Passed, statusError), check.Detail, colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func printDaemonSection(out io.Writer, address string, status *api.DaemonStatus, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
	if status == nil {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not reachable at "+address, colorize))
		return
	}
	message := fmt.Sprintf("pid %d", status.PID)
	if status.UptimeSec > 0 {
		message += ", up " + (time.Duration(status.UptimeSec) * time.Second).String()
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", passKind(status.Running, statusWarn), message, colorize))
	fmt.Fprintln(out, renderStatusLine("Metrics", statusInfo, yesNo(status.MetricsEnabled), colorize))
	fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo, formatJobCounts(status.JobCounts), colorize))
}

func printStyleSection(out io.Writer, cfg *config.Config, colorize bool) {
	fmt.Fprintln(out, renderSectionHeader("Style", colorize))
	fmt.Fprintln(out, renderStatusLine("Font", statusInfo, fmt.Sprintf("%s (%s)", cfg.Style.FontFamily, cfg.Style.FontFile), colorize))
	fmt.Fprintln(out, renderStatusLine("Highlight", statusInfo, cfg.Style.DefaultActiveColor, colorize))
}

func formatJobCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none recorded"
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", key, counts[key]))
	}
	return strings.Join(parts, ", ")
}
