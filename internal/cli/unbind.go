package cli

import (
	"fmt"

	"github.com/lnr-labs/lnr/internal/config"
	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/spf13/cobra"
)

var (
	unbindOld      bool
	unbindPackage  bool
	unbindExplicit string
)

func init() {
	unbindCmd.Flags().BoolVarP(&unbindOld, "old-version", "o", false, "Restore the version declared before binding (default)")
	unbindCmd.Flags().BoolVarP(&unbindPackage, "package-version", "p", false, "Use the version in the clone's package.json")
	unbindCmd.Flags().StringVarP(&unbindExplicit, "explicit-version", "e", "", "Use this version (\"o\" and \"p\" select the sources above)")
	unbindCmd.MarkFlagsMutuallyExclusive("old-version", "package-version", "explicit-version")
	rootCmd.AddCommand(unbindCmd)
}

var unbindCmd = &cobra.Command{
	Use:   "unbind <name>",
	Short: "Go back to the published version of a package",
	Long: `Write a published version back into package.json and remove the
node_modules symlink. Restoring the version declared before binding also
restores the installed copy; any other version needs a package manager
install afterwards.

Example:
  lnr unbind left-pad
  lnr unbind left-pad --explicit-version ^1.4.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		opts := linker.NewUnbindOptions(unbindOld, unbindPackage, unbindExplicit)

		return withLock(cmd.Context(), engine, func() error {
			res, err := engine.Unbind(args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Version == "" {
				fmt.Fprintf(out, "Unbound %s; removed it from package.json\n", res.Name)
			} else {
				fmt.Fprintf(out, "Unbound %s at %s (%s)\n", res.Name, res.Version, res.Group)
			}
			if res.Restored {
				fmt.Fprintln(out, "Installed copy restored.")
			}
			if res.NeedsInstall {
				fmt.Fprintf(out, "Run '%s install' to fetch %s %s.\n", config.Current().PackageManager, res.Name, res.Version)
			}
			return nil
		})
	},
}
