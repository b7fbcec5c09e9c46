package cli

import (
	"fmt"
	"io"

	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/spf13/cobra"
)

var (
	bindDev       bool
	bindProd      bool
	bindRecursive bool
)

func init() {
	bindCmd.Flags().BoolVar(&bindDev, "dev", false, "Bind as a dev dependency")
	bindCmd.Flags().BoolVar(&bindProd, "prod", false, "Bind as a production dependency")
	bindCmd.Flags().BoolVarP(&bindRecursive, "recursive", "r", false, "Also bind in every workspace that declares the package")
	bindCmd.MarkFlagsMutuallyExclusive("dev", "prod")
	rootCmd.AddCommand(bindCmd)
}

var bindCmd = &cobra.Command{
	Use:   "bind <name>",
	Short: "Use the local clone of a package",
	Long: `Point package.json at the cached clone of a package and symlink it into
node_modules. An installed copy is moved aside so unbind can put it back.

Without --dev or --prod the group already declared in package.json is kept.

Example:
  lnr bind left-pad
  lnr bind @acme/ui --dev --recursive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		opts := linker.BindOptions{Recursive: bindRecursive}
		switch {
		case bindDev:
			opts.Dev = &bindDev
		case bindProd:
			dev := false
			opts.Dev = &dev
		}

		return withLock(cmd.Context(), engine, func() error {
			res, err := engine.Bind(args[0], opts)
			if err != nil {
				return err
			}
			printBind(cmd.OutOrStdout(), res)
			return nil
		})
	},
}

func printBind(w io.Writer, res *linker.BindResult) {
	fmt.Fprintf(w, "Bound %s (%s) to %s\n", res.Name, res.Group, res.RepoDir)
	if res.BackedUp {
		fmt.Fprintln(w, "Installed copy moved aside; unbind restores it.")
	}
	for _, ws := range res.Workspaces {
		fmt.Fprintf(w, "  also bound in %s\n", ws)
	}
}
