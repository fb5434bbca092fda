package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/counsel/internal/advisor"
	"github.com/abhisek/counsel/internal/dataset"
	"github.com/abhisek/counsel/internal/llm"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/table"
	"github.com/abhisek/counsel/internal/ui/theme"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Draft LLM counseling briefs for a saved run's top students",
	Long: `Draft a counseling brief for each of the top students of a saved run,
in the order the run ranked them. Requires an LLM provider: set
COUNSEL_LLM_PROVIDER and its API key, or one of ANTHROPIC_API_KEY,
OPENAI_API_KEY, GEMINI_API_KEY, OPENROUTER_API_KEY.

Every request is recorded and can be inspected with "counsel llm list".`,
	RunE: runBrief,
}

func init() {
	briefCmd.Flags().String("run", "", "Run ID (required)")
	briefCmd.Flags().Int("top", 0, "Number of students (defaults to brief.top in config)")
	briefCmd.Flags().String("quadrant", "", "Only students in this priority quadrant")
	briefCmd.Flags().Bool("cohort", false, "Also draft an overview of the whole run")
	_ = briefCmd.MarkFlagRequired("run")
}

func runBrief(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	top, _ := cmd.Flags().GetInt("top")
	if top <= 0 {
		top = appCfg.Brief.Top
	}
	quadrant, _ := cmd.Flags().GetString("quadrant")
	cohort, _ := cmd.Flags().GetBool("cohort")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	run, outcomes, err := loadRun(cmd, s, runID)
	if err != nil {
		return err
	}

	provider, llmCfg, err := llm.NewProviderFromEnv(cmd.Context(), s.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), llmCfg.Timeout*timeoutBudget(top, cohort))
	defer cancel()

	contexts := advisor.ContextsFromRun(run, outcomes, sourceTable(run.DataPath))
	if quadrant != "" {
		contexts = filterQuadrant(contexts, ranking.Quadrant(quadrant))
	}
	if len(contexts) == 0 {
		newPrinter(cmd).hint("No students to brief.")
		return nil
	}

	svc := advisor.NewService(provider, advisor.Config{
		MaxTokens:       appCfg.Brief.MaxTokens,
		CohortMaxTokens: advisor.DefaultConfig().CohortMaxTokens,
		Temperature:     appCfg.Brief.Temperature,
		MaxActions:      appCfg.Brief.MaxActions,
	}, logger)

	out := newPrinter(cmd)
	out.runHeader(run)

	if cohort {
		cs, err := svc.Cohort(ctx, advisor.CohortInput{
			Strategy: run.Strategy,
			Targets:  advisor.TargetChanges(run),
			Summary:  ranking.Summarize(outcomes),
			Top:      firstN(contexts, top),
		})
		if err != nil {
			out.line(theme.Failed.Render("cohort summary failed: " + err.Error()))
		} else {
			out.title("Cohort")
			out.line(cs.Overview)
			for _, th := range cs.Themes {
				out.line("• " + th)
			}
			out.line("")
		}
	}

	briefs, briefErr := svc.BriefTop(ctx, contexts, top)
	byID := make(map[string]advisor.StudentContext, len(contexts))
	for _, sc := range contexts {
		byID[sc.StudentID] = sc
	}
	for _, b := range briefs {
		out.brief(byID[b.StudentID], b)
	}

	out.hint(fmt.Sprintf("%d briefs drafted with %s", len(briefs), provider.ModelID()))
	return reportBriefErrors(out, briefErr, len(briefs))
}

// reportBriefErrors prints each failed student. A failure that stopped the
// loop (deadline, cancellation) fails the command, as does drafting nothing.
func reportBriefErrors(out *printer, err error, drafted int) error {
	if err == nil {
		return nil
	}
	var stopped error
	for _, e := range unwrapJoined(err) {
		var be *advisor.BriefError
		if errors.As(e, &be) {
			out.line(theme.Failed.Render(fmt.Sprintf("%s: %v", be.StudentID, be.Err)))
			continue
		}
		out.line(theme.Failed.Render("stopped: " + e.Error()))
		stopped = e
	}
	if stopped != nil {
		return fmt.Errorf("briefs stopped after %d drafted: %w", drafted, stopped)
	}
	if drafted == 0 {
		return fmt.Errorf("no briefs drafted: %w", err)
	}
	return nil
}

// sourceTable reloads the run's student file for current feature values.
// The file may have moved since the run; briefs then go without them.
func sourceTable(path string) *table.Table {
	ds, err := dataset.Load(path)
	if err != nil {
		logger.Debug("source data unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return ds.X
}

func filterQuadrant(contexts []advisor.StudentContext, q ranking.Quadrant) []advisor.StudentContext {
	var out []advisor.StudentContext
	for _, sc := range contexts {
		if sc.Quadrant == q {
			out = append(out, sc)
		}
	}
	return out
}

func firstN(contexts []advisor.StudentContext, n int) []advisor.StudentContext {
	if n > 0 && n < len(contexts) {
		return contexts[:n]
	}
	return contexts
}

// timeoutBudget scales the per-request timeout to the number of calls.
func timeoutBudget(top int, cohort bool) time.Duration {
	n := max(top, 1)
	if cohort {
		n++
	}
	return time.Duration(n)
}

func unwrapJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
