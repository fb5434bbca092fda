package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/counsel/internal/features"
	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/ui/components"
	"github.com/spf13/cobra"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List actionable features and their default targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		out := newPrinter(cmd)

		defaults := strategy.DefaultConfig()
		tbl := components.Table{Columns: []components.Column{
			{Title: "Feature"},
			{Title: "Kind"},
			{Title: "Range"},
			{Title: "Default"},
			{Title: "Description"},
		}}
		for _, a := range features.ActionableCatalog() {
			def := ""
			if v, ok := defaults.Get(a.Name); ok {
				def = v.String()
			}
			tbl.AddRow(a.Name, string(a.Kind), a.RangeLabel(), def, a.Description)
		}
		out.title("Actionable features")
		fmt.Fprint(out.w, tbl.View())

		if !all {
			return nil
		}
		meta := features.Metadata()
		out.line("")
		out.title("All classified features")
		for _, k := range features.AllKinds() {
			out.field(string(k), strings.Join(meta.Names(k), ", "))
		}
		return nil
	},
}

func init() {
	featuresCmd.Flags().Bool("all", false, "Also list every classified feature by kind")
}
