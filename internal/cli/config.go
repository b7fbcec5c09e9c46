package cli

import (
	"fmt"

	"github.com/lnr-labs/lnr/internal/config"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/spf13/cobra"
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write lnr settings stored at $XDG_CONFIG_HOME/lnr/config.yaml.

Keys: ` + fmt.Sprint(config.Keys()),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if !config.IsKnownKey(key) {
			return lnrerrors.Newf(lnrerrors.ErrInvalidInput, "unknown config key %q", key)
		}
		if err := config.Set(key, value); err != nil {
			return lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "setting config key %q", key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsKnownKey(args[0]) {
			return lnrerrors.Newf(lnrerrors.ErrInvalidInput, "unknown config key %q", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}
