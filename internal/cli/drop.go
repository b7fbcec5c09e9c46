package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(dropCmd)
}

var dropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Forget an unbound package and delete its clone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		return withLock(cmd.Context(), engine, func() error {
			res, err := engine.Drop(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dropped %s from %s\n", res.Name, res.File)
			if res.RepoKept {
				fmt.Fprintf(out, "Kept %s, another package uses it\n", res.RepoDir)
			}
			return nil
		})
	},
}
