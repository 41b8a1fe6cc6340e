package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"captionburn/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect burn job history from the daemon",
	}
	listCmd := newJobsListCommand(ctx)
	jobsCmd.AddCommand(listCmd)
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.RunE = listCmd.RunE
	jobsCmd.Flags().AddFlagSet(listCmd.Flags())
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ctx.client().ListJobs(cmd.Context(), limit, statuses...)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, list)
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}
			fmt.Fprintln(out, renderJobsTable(list))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (pending, running, succeeded, failed)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show details for one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := ctx.client().GetJob(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			printJob(cmd.OutOrStdout(), *job)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func renderJobsTable(list []api.Job) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Video", "Status", "Words", "Created", "Elapsed"})
	for _, job := range list {
		tw.AppendRow(table.Row{
			shortJobID(job.ID),
			fallback(job.VideoName, "-"),
			formatStatusLabel(job.Status),
			job.EventCount,
			formatDisplayTime(job.CreatedAt),
			formatElapsed(job.ElapsedSec),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func printJob(out io.Writer, job api.Job) {
	rows := [][2]string{
		{"ID", job.ID},
		{"Status", formatStatusLabel(job.Status)},
		{"Video", fallback(job.VideoName, "-")},
		{"Captions", fmt.Sprintf("%d spans, %d words", job.SpanCount, job.EventCount)},
		{"Active colour", fallback(job.ActiveColor, "-")},
		{"Created", formatDisplayTime(job.CreatedAt)},
		{"Started", formatDisplayTime(job.StartedAt)},
		{"Finished", formatDisplayTime(job.FinishedAt)},
		{"Elapsed", formatElapsed(job.ElapsedSec)},
	}
	if job.OutputURL != "" {
		rows = append(rows, [2]string{"Output URL", job.OutputURL})
	}
	if job.OutputPath != "" {
		rows = append(rows, [2]string{"Output path", job.OutputPath})
	}
	if job.ErrorMessage != "" {
		rows = append(rows, [2]string{"Error", fmt.Sprintf("%s (%s)", job.ErrorMessage, fallback(job.ErrorKind, "unknown"))})
	}
	if job.RequestID != "" {
		rows = append(rows, [2]string{"Request ID", job.RequestID})
	}
	for _, row := range rows {
		fmt.Fprintf(out, "%-14s %s\n", row[0]+":", row[1])
	}
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + strings.ToLower(status[1:])
}

func formatDisplayTime(value string) string {
	parsed, ok := api.ParseTime(value)
	if !ok {
		return "-"
	}
	return parsed.Local().Format("2006-01-02 15:04:05")
}

func formatElapsed(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return (time.Duration(seconds * float64(time.Second))).Round(100 * time.Millisecond).String()
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
