package cli

import (
	"fmt"
	"io"
	"os/exec"

	"github.com/lnr-labs/lnr/internal/config"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check state files, package.json and node_modules agree",
	Long: `Report drift between the state files, package.json and node_modules, for
example after an interrupted command or a package manager reinstall. Exits
non-zero when drift is found; 'lnr install' repairs link drift.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		report, err := engine.Status(linker.StatusOptions{Verbose: true})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		configureColor(out)

		s := config.Current()
		fmt.Fprintln(out, "Tools:")
		checkBinary(out, s.GitBinary)
		checkBinary(out, s.PackageManager)

		if !report.HasDrift() {
			fmt.Fprintf(out, "%d package(s) checked, no drift.\n", len(report.Packages))
			return nil
		}
		printDrift(out, report)
		return lnrerrors.New(lnrerrors.ErrDrift, "drift detected")
	},
}

// checkBinary reports whether name is on PATH. A missing tool is a warning.
func checkBinary(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %s not found\n", name)
		return
	}
	fmt.Fprintf(w, "  [ OK ] %s found at %s\n", name, path)
}
