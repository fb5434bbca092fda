package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/counsel/internal/dataset"
	"github.com/abhisek/counsel/internal/grader"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/store"
	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Apply a strategy to a student file and rank the outcomes",
	Long: `Apply an improvement strategy to every student in a CSV file, predict
each student's expected grade under the strategy's targets, and print the
students ranked by the chosen metric.

Targets come from the built-in default strategy, a YAML strategy file
(--strategy), or both, with --set overriding single features.`,
	Example: `  counsel run --data students.csv
  counsel run --data students.csv --set studytime=3 --set paid=no --top 10
  counsel run --data students.csv --strategy plan.yaml --sort complexity --asc --export out.csv`,
	RunE: runEvaluate,
}

func init() {
	f := runCmd.Flags()
	f.String("data", "", "Student CSV file (required)")
	f.String("strategy", "", "YAML strategy file with feature targets")
	f.StringArray("set", nil, "Override one target, feature=value (repeatable)")
	f.String("sort", "", "Sort metric: gain, complexity, expected, final")
	f.Bool("asc", false, "Sort ascending")
	f.Int("top", 0, "Show only the first N students (0 for all)")
	f.Float64("min-gain", 0, "Hide students whose gain is below this")
	f.Float64("max-complexity", 0, "Hide students whose complexity is above this")
	f.String("export", "", "Write the ranked outcomes to this CSV file")
	f.Bool("no-save", false, "Do not record the run in the database")
	f.String("models", "", "Directory holding the grader artifacts")
	f.String("unknown", "", "Unseen category policy: error or ignore")
	_ = runCmd.MarkFlagRequired("data")
}

// runOptions is the resolved form of the run flags and config.
type runOptions struct {
	data      string
	sort      ranking.Metric
	ascending bool
	top       int
	ranges    []ranking.Range
	export    string
	save      bool
	models    string
	baseline  grader.BaselineOptions
}

func resolveRunOptions(cmd *cobra.Command) (runOptions, error) {
	f := cmd.Flags()
	o := runOptions{
		top:  appCfg.Run.Top,
		save: appCfg.Run.Save,
		baseline: grader.BaselineOptions{
			ModelName:   appCfg.Models.Model,
			EncoderName: appCfg.Models.Encoder,
		},
		models: appCfg.Models.Dir,
	}
	o.data, _ = f.GetString("data")
	o.ascending, _ = f.GetBool("asc")
	o.export, _ = f.GetString("export")

	sortName := appCfg.Run.Sort
	if s, _ := f.GetString("sort"); s != "" {
		sortName = s
	}
	m, err := ranking.ParseMetric(sortName)
	if err != nil {
		return o, err
	}
	o.sort = m

	if f.Changed("top") {
		o.top, _ = f.GetInt("top")
	}
	if noSave, _ := f.GetBool("no-save"); noSave {
		o.save = false
	}
	if f.Changed("min-gain") {
		v, _ := f.GetFloat64("min-gain")
		o.ranges = append(o.ranges, ranking.AtLeast(ranking.MetricGain, v))
	}
	if f.Changed("max-complexity") {
		v, _ := f.GetFloat64("max-complexity")
		o.ranges = append(o.ranges, ranking.AtMost(ranking.MetricComplexity, v))
	}
	if d, _ := f.GetString("models"); d != "" {
		o.models = d
	}

	unknown := appCfg.Models.Unknown
	if u, _ := f.GetString("unknown"); u != "" {
		unknown = u
	}
	if o.baseline.Unknown, err = grader.ParseUnknownPolicy(unknown); err != nil {
		return o, err
	}
	return o, nil
}

// resolveStrategyConfig starts from the strategy file (or the default
// targets) and applies --set overrides in order.
func resolveStrategyConfig(cmd *cobra.Command) (strategy.Config, error) {
	path, _ := cmd.Flags().GetString("strategy")
	if path == "" {
		path = appCfg.Run.Strategy
	}

	cfg := strategy.DefaultConfig()
	if path != "" {
		loaded, err := strategy.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, s := range sets {
		feature, value, ok := strings.Cut(s, "=")
		feature = strings.TrimSpace(feature)
		if !ok || feature == "" {
			return cfg, fmt.Errorf("invalid --set %q: want feature=value", s)
		}
		cfg = cfg.With(feature, table.ParseValue(value))
	}
	return cfg, cfg.Validate()
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	opts, err := resolveRunOptions(cmd)
	if err != nil {
		return err
	}
	scfg, err := resolveStrategyConfig(cmd)
	if err != nil {
		return err
	}

	ds, err := dataset.Load(opts.data)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", zap.String("path", opts.data), zap.Int("students", ds.X.Len()))

	strat, err := strategy.NewDefault(ds.X, ds.Y,
		strategy.WithConfig(scfg),
		strategy.WithModelFactory(grader.DefaultFactory(opts.models, opts.baseline)),
		strategy.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	if err := strat.Apply(ctx); err != nil {
		return fmt.Errorf("apply %s: %w", strat.Name(), err)
	}
	target, err := strat.Target()
	if err != nil {
		return err
	}

	outcomes, err := ranking.Outcomes(target, ds.Y, ds.Names)
	if err != nil {
		return err
	}
	summary := ranking.Summarize(outcomes)
	quadrants := ranking.Classify(outcomes)
	ranked := ranking.Sort(outcomes, opts.sort, opts.ascending)
	shown := ranking.Top(ranking.Filter(ranked, opts.ranges...), opts.top)

	out := newPrinter(cmd)
	out.strategyHeader(strat.Name(), strat.Model().Name(), scfg)
	out.outcomeTable(shown, scfg.Keys(), quadrants, summary.MaxGain)
	if hidden := len(ranked) - len(shown); hidden > 0 {
		out.hint(fmt.Sprintf("%d of %d students hidden by filters or --top", hidden, len(ranked)))
	}
	out.summary(summary)

	if opts.export != "" {
		if err := dataset.ExportFile(opts.export, ranking.Filter(ranked, opts.ranges...)); err != nil {
			return err
		}
		out.hint("exported to " + opts.export)
	}

	if !opts.save {
		return nil
	}
	id, err := saveRun(cmd, strat, scfg, opts.data, summary, ranked)
	if err != nil {
		// The evaluation itself succeeded; history is best effort.
		logger.Warn("run not saved", zap.Error(err))
		out.hint("run not saved: " + err.Error())
		return nil
	}
	out.hint("saved as run " + id)
	return nil
}

func saveRun(cmd *cobra.Command, strat *strategy.Default, scfg strategy.Config, dataPath string,
	summary ranking.Summary, ranked []ranking.Outcome) (string, error) {
	s, err := openStore(cmd)
	if err != nil {
		return "", err
	}
	defer s.Close()

	if abs, err := filepath.Abs(dataPath); err == nil {
		dataPath = abs
	}
	run := store.Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now(),
		Strategy:       strat.Name(),
		Model:          strat.Model().Name(),
		DataPath:       dataPath,
		Students:       summary.Count,
		MeanGain:       summary.MeanGain,
		MeanComplexity: summary.MeanComplexity,
		MaxGain:        summary.MaxGain,
	}
	for _, t := range scfg.Targets() {
		run.Targets = append(run.Targets, store.Target{Feature: t.Feature, Value: t.Value.String()})
	}

	rows := make([]store.RunOutcome, len(ranked))
	for i, o := range ranked {
		rows[i] = store.RunOutcome{
			StudentID:       o.StudentID,
			FirstName:       o.Name.First,
			FamilyName:      o.Name.Family,
			FinalGrade:      o.FinalGrade,
			ExpectedGrade:   o.ExpectedGrade,
			PerformanceGain: o.PerformanceGain,
			Complexity:      o.Complexity,
			ImpLevels:       o.ImpLevels,
		}
	}
	if err := s.RunRepo().SaveRun(cmd.Context(), run, rows); err != nil {
		return "", err
	}
	return run.ID, nil
}
