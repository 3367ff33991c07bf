package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/quaid/total-recall/internal/stats"
)

// NewStatsCommand creates the stats command
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Aggregate session statistics across all projects",
		Long: `Aggregate per-project session statistics by querying the session
logs directly with DuckDB. Slower than the regular scan but exact.`,
		RunE: runStats,
	}
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report, totals, err := stats.Collect(cmd.Context(), cfg.ProjectsDir())
	if err != nil {
		return fmt.Errorf("failed to collect stats: %w", err)
	}

	if len(report) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tSESSIONS\tMESSAGES\tASSISTANT\tLAST ACTIVITY")
	for _, p := range report {
		last := "-"
		if !p.LastActivity.IsZero() {
			last = p.LastActivity.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
			p.ProjectPath, p.SessionCount, p.MessageCount, p.AssistantTurns, last)
	}
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t\n",
		totals.Sessions, totals.Messages, totals.AssistantTurns)
	return w.Flush()
}
