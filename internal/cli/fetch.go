package cli

import (
	"fmt"

	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/spf13/cobra"
)

var (
	fetchLocal bool
	fetchBind  bool
	fetchDev   bool
)

func init() {
	fetchCmd.Flags().BoolVar(&fetchLocal, "local", false, "Record the package in the local state file only")
	fetchCmd.Flags().BoolVar(&fetchBind, "bind", false, "Bind the package after fetching it")
	fetchCmd.Flags().BoolVar(&fetchDev, "dev", false, "With --bind, bind as a dev dependency")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Clone a repository into the cache and record it",
	Long: `Clone a git repository into the cache directory and record it under the
name from its package.json.

Example:
  lnr fetch https://github.com/acme/left-pad-fork.git --bind`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}

		opts := linker.FetchOptions{Local: fetchLocal, Bind: fetchBind}
		if cmd.Flags().Changed("dev") {
			opts.Dev = &fetchDev
		}

		out := cmd.OutOrStdout()
		return withLock(cmd.Context(), engine, func() error {
			fmt.Fprintf(out, "Fetching %s...\n", args[0])
			res, err := engine.Fetch(cmd.Context(), args[0], opts)
			if res != nil {
				if res.Cloned {
					fmt.Fprintf(out, "Cloned into %s\n", res.RepoDir)
				} else {
					fmt.Fprintf(out, "Using existing clone %s\n", res.RepoDir)
				}
				if res.Recorded {
					fmt.Fprintf(out, "Recorded %s in %s\n", res.Name, res.File)
				}
				if res.Bind != nil {
					printBind(out, res.Bind)
				}
			}
			return err
		})
	},
}
