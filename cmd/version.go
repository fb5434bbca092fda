package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/abhisek/counsel/internal/grader"
	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the model artifact format it reads",
	Run: func(cmd *cobra.Command, args []string) {
		v := version
		if info, ok := debug.ReadBuildInfo(); ok && v == "(devel)" && info.Main.Version != "" {
			v = info.Main.Version
		}
		out := newPrinter(cmd)
		out.line("counsel " + v)
		out.field("Artifacts", fmt.Sprintf("%s.x (%s, %s)", grader.SupportedFormat,
			grader.BaselineName, grader.DefaultEncoderName))
	},
}
