package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/counsel/internal/llm"
	"github.com/abhisek/counsel/internal/store"
	"github.com/abhisek/counsel/internal/ui/components"
	"github.com/abhisek/counsel/internal/ui/theme"
	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := store.QueryOpts{Limit: limit}
		if purpose != "" {
			// Filtered client side; fetch everything and cut after.
			opts.Limit = 0
		}
		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := newPrinter(cmd)
		tbl := components.Table{Columns: []components.Column{
			{Title: "ID", Right: true},
			{Title: "Timestamp"},
			{Title: "Purpose"},
			{Title: "Model", Width: 28},
			{Title: "In", Right: true},
			{Title: "Out", Right: true},
			{Title: "Ms", Right: true},
			{Title: "OK"},
		}}
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if limit > 0 && len(tbl.Rows) == limit {
				break
			}
			ok := theme.Positive.Render("✓")
			if !e.Success {
				ok = theme.Negative.Render("✗")
			}
			tbl.AddRow(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				e.Model,
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			)
		}
		if len(tbl.Rows) == 0 {
			out.hint("No LLM events found.")
			return nil
		}
		fmt.Fprint(out.w, tbl.View())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := newPrinter(cmd)
		out.field("ID", strconv.Itoa(e.ID))
		out.field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		out.field("Provider", e.Provider)
		out.field("Model", e.Model)
		out.field("Purpose", e.Purpose)
		out.field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
		out.field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
		out.field("Success", strconv.FormatBool(e.Success))
		if e.ErrorMessage != "" {
			out.field("Error", theme.Failed.Render(e.ErrorMessage))
		}

		section := func(name, body string) {
			out.line("")
			out.line(theme.Rule.Render(strings.Repeat("─", 60)))
			out.title(name)
			out.line(theme.Rule.Render(strings.Repeat("─", 60)))
			if body == "" {
				body = theme.Hint.Render("(not captured)")
			}
			out.line(body)
		}
		section("REQUEST", e.RequestBody)
		section("RESPONSE", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		stats, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		out := newPrinter(cmd)
		if len(stats) == 0 {
			out.hint("No LLM usage recorded yet.")
			return nil
		}

		usage := components.Table{Columns: []components.Column{
			{Title: "Purpose"},
			{Title: "Calls", Right: true},
			{Title: "Input", Right: true},
			{Title: "Output", Right: true},
			{Title: "Total", Right: true},
			{Title: "Avg Ms", Right: true},
		}}
		var totalCalls, totalIn, totalOut int
		for _, st := range stats {
			usage.AddRow(st.Purpose, strconv.Itoa(st.Calls), strconv.Itoa(st.InputTokens),
				strconv.Itoa(st.OutputTokens), strconv.Itoa(st.InputTokens+st.OutputTokens),
				strconv.FormatInt(st.AvgLatencyMs, 10))
			totalCalls += st.Calls
			totalIn += st.InputTokens
			totalOut += st.OutputTokens
		}
		usage.AddRow(theme.Header.Render("TOTAL"), strconv.Itoa(totalCalls), strconv.Itoa(totalIn),
			strconv.Itoa(totalOut), strconv.Itoa(totalIn+totalOut))

		out.title("Usage by purpose")
		fmt.Fprint(out.w, usage.View())

		models, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		if len(models) == 0 {
			return nil
		}

		costs := components.Table{Columns: []components.Column{
			{Title: "Model", Width: 32},
			{Title: "Calls", Right: true},
			{Title: "Input", Right: true},
			{Title: "Output", Right: true},
			{Title: "Cost", Right: true},
		}}
		var totalCost float64
		var unknown []string
		for _, mu := range models {
			cost := "?"
			if c, ok := llm.EstimateCost(mu.Model, mu.InputTokens, mu.OutputTokens); ok {
				totalCost += c
				cost = formatCost(c)
			} else {
				unknown = append(unknown, mu.Model)
			}
			costs.AddRow(mu.Model, strconv.Itoa(mu.Calls), strconv.Itoa(mu.InputTokens),
				strconv.Itoa(mu.OutputTokens), cost)
		}
		label := "TOTAL"
		if len(unknown) > 0 {
			label = "TOTAL (partial)"
		}
		costs.AddRow(theme.Header.Render(label), "", "", "", formatCost(totalCost))

		out.line("")
		out.title("Estimated cost (USD)")
		fmt.Fprint(out.w, costs.View())
		if len(unknown) > 0 {
			out.hint("Pricing unavailable for: " + strings.Join(unknown, ", "))
		}
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (student-brief, cohort-summary)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
