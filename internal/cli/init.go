package cli

import (
	"fmt"

	"github.com/lnr-labs/lnr/internal/branding"
	"github.com/lnr-labs/lnr/internal/project"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize lnr in this project",
	Long: `Create ` + branding.StateFile() + ` and ` + branding.LocalStateFile() + `, the clone cache directory,
and .gitignore entries for the files that stay private to this checkout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := startDir()
		if err != nil {
			return err
		}
		layout := layoutFor(root)
		if err := project.Init(layout); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s in %s\n", branding.CLIName(), root)
		return nil
	},
}
