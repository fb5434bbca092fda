package cmd

import (
	"fmt"
	"time"

	"github.com/abhisek/counsel/internal/advisor"
	"github.com/abhisek/counsel/internal/dataset"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse saved strategy runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		runs, err := s.RunRepo().ListRuns(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		out := newPrinter(cmd)
		if len(runs) == 0 {
			out.hint("No runs saved yet. Try: counsel run --data students.csv")
			return nil
		}
		out.runTable(runs)
		return nil
	},
}

var runsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a saved run's ranked students",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")
		export, _ := cmd.Flags().GetString("export")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		run, outcomes, err := loadRun(cmd, s, args[0])
		if err != nil {
			return err
		}

		features := make([]string, len(run.Targets))
		for i, t := range run.Targets {
			features[i] = t.Feature
		}

		out := newPrinter(cmd)
		out.runHeader(run)
		out.outcomeTable(ranking.Top(outcomes, top), features, ranking.Classify(outcomes), run.MaxGain)
		out.summary(ranking.Summarize(outcomes))

		if export != "" {
			if err := dataset.ExportFile(export, outcomes); err != nil {
				return err
			}
			out.hint("exported to " + export)
		}
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		run, err := s.RunRepo().GetRun(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("run %s not found", args[0])
		}
		if err := s.RunRepo().DeleteRun(cmd.Context(), run.ID); err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		newPrinter(cmd).hint("deleted run " + run.ID)
		return nil
	},
}

// loadRun fetches a run and its outcomes in saved order.
func loadRun(cmd *cobra.Command, s *store.Store, id string) (*store.Run, []ranking.Outcome, error) {
	run, err := s.RunRepo().GetRun(cmd.Context(), id)
	if err != nil {
		return nil, nil, fmt.Errorf("get run: %w", err)
	}
	if run == nil {
		return nil, nil, fmt.Errorf("run %s not found", id)
	}
	rows, err := s.RunRepo().RunOutcomes(cmd.Context(), run.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get run outcomes: %w", err)
	}
	outcomes := make([]ranking.Outcome, len(rows))
	for i, r := range rows {
		outcomes[i] = advisor.OutcomeFromStore(r)
	}
	return run, outcomes, nil
}

func init() {
	runsListCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	runsListCmd.Flags().Duration("since", 0, "Only runs newer than this, e.g. 168h")
	runsViewCmd.Flags().Int("top", 20, "Number of students to show (0 for all)")
	runsViewCmd.Flags().String("export", "", "Write the run's outcomes to this CSV file")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsViewCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}
