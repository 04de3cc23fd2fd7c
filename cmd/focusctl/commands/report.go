package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"attentionos/internal/analytics"
	"attentionos/internal/analytics/models"
)

// NewReportCommand creates the report command
func NewReportCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show today's grade, streak, trends and recent days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			dashboard, err := a.Service.Dashboard(commandContext(cmd))
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(dashboard)
			}
			return renderReport(cmd.OutOrStdout(), dashboard)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full dashboard as JSON")
	return cmd
}

func renderReport(w io.Writer, d *models.Dashboard) error {
	today := d.Today
	var b strings.Builder

	b.WriteString(titleStyle.Render("Focus report for "+today.Date) + "\n")
	b.WriteString(gradeStyle(today.DisplayColor()).Render(today.Grade) + "\n")

	b.WriteString(row("Score", fmt.Sprintf("%.1f", today.Score)) + "\n")
	b.WriteString(row("Insight", today.Insight) + "\n")
	b.WriteString(row("Sessions today", fmt.Sprintf("%d", today.SessionCount)) + "\n")
	b.WriteString(row("Active today", analytics.FormatDuration(today.TotalActiveSeconds)) + "\n")
	b.WriteString(row("App switches", fmt.Sprintf("%d", today.TotalAppSwitches)) + "\n")
	b.WriteString(row("Streak", fmt.Sprintf("%d %s", d.Streak, plural(d.Streak, "day", "days"))) + "\n")
	b.WriteString(row("Weekly improvement", fmt.Sprintf("%+.1f%%", d.WeeklyImprovement)) + "\n")
	b.WriteString(row("Vs average", fmt.Sprintf("%+d", d.TrendVsAverage)) + "\n")

	if d.Health != nil {
		b.WriteString(row("Health", fmt.Sprintf("%s %s  %s", d.Health.Emoji, d.Health.Status,
			mutedStyle.Render(d.Health.Description))) + "\n")
	}

	if d.Stats.TotalSessions > 0 {
		b.WriteString(row("All-time average", fmt.Sprintf("%.1f over %d sessions, %s active each",
			d.Stats.AvgFocusScore, d.Stats.TotalSessions, analytics.FormatDuration(int(d.Stats.AvgActiveTime)))) + "\n")
	}

	if len(d.DailyBreakdown) > 0 {
		b.WriteString("\n" + titleStyle.Render("Recent days") + "\n")
		for _, day := range d.DailyBreakdown {
			focus := bandStyle(day.FocusBand).Render(fmt.Sprintf("%3d", day.AvgFocus))
			fmt.Fprintf(&b, "  %s %s  focus %s  %3d min  %2d switches  %d %s\n",
				day.Weekday, day.Date, focus, day.ActiveMinutes, day.AppSwitches,
				day.SessionCount, plural(day.SessionCount, "session", "sessions"))
		}
	}

	if d.RejectedRecords > 0 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d invalid records skipped", d.RejectedRecords)) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// commandContext returns the command context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
