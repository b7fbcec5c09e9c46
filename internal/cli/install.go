package cli

import (
	"fmt"
	"strings"

	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/spf13/cobra"
)

var installFetchOnly bool

func init() {
	installCmd.Flags().BoolVar(&installFetchOnly, "fetch-only", false, "Only clone missing repositories, do not relink")
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Restore clones and links after a fresh checkout",
	Long: `Clone every recorded repository that is missing from the cache and recreate
the node_modules symlinks of bound packages, for example after a package
manager install replaced them with published copies.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		return withLock(cmd.Context(), engine, func() error {
			res, err := engine.Install(cmd.Context(), linker.InstallOptions{FetchOnly: installFetchOnly})
			if res != nil {
				out := cmd.OutOrStdout()
				if len(res.Fetched) > 0 {
					fmt.Fprintf(out, "Fetched: %s\n", strings.Join(res.Fetched, ", "))
				}
				if len(res.Relinked) > 0 {
					fmt.Fprintf(out, "Relinked: %s\n", strings.Join(res.Relinked, ", "))
				}
				if len(res.Skipped) > 0 {
					fmt.Fprintf(out, "Skipped (no repo_url recorded): %s\n", strings.Join(res.Skipped, ", "))
				}
				if len(res.Fetched)+len(res.Relinked)+len(res.Skipped) == 0 {
					fmt.Fprintln(out, "Nothing to do.")
				}
			}
			return err
		})
	},
}
