package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the local database (saved runs and LLM audit trail)",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		path, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		out := newPrinter(cmd)
		if !yes {
			out.hint(fmt.Sprintf("This removes %s. Re-run with --yes to confirm.", path))
			return nil
		}

		removed := 0
		// SQLite in WAL mode keeps two sidecar files next to the database.
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			err := os.Remove(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("remove %s: %w", p, err)
			}
			removed++
		}
		logger.Info("database reset", zap.String("path", path), zap.Int("files", removed))

		if removed == 0 {
			out.hint("Nothing to remove.")
			return nil
		}
		out.line(fmt.Sprintf("Removed %s", path))
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm deletion")
}
