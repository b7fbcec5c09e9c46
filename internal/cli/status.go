package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusVerbose bool

func init() {
	statusCmd.Flags().BoolVar(&statusVerbose, "verbose", false, "Also show workspace links and clone versions")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorded packages and how they are linked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		report, err := engine.Status(linker.StatusOptions{Verbose: statusVerbose})
		if err != nil {
			return err
		}
		return renderStatus(cmd.OutOrStdout(), report, statusVerbose)
	},
}

// configureColor turns styling off unless w is a terminal.
func configureColor(w io.Writer) {
	f, ok := w.(*os.File)
	if os.Getenv("NO_COLOR") != "" || !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		pterm.DisableStyling()
		return
	}
	pterm.EnableStyling()
}

func renderStatus(w io.Writer, report *linker.StatusReport, verbose bool) error {
	configureColor(w)

	if len(report.Packages) == 0 {
		fmt.Fprintln(w, "No packages recorded. Use 'lnr fetch <url>' to add one.")
		return nil
	}

	header := []string{"PACKAGE", "STATE", "GROUP", "LINK", "FILE"}
	if verbose {
		header = append(header, "RECORDED", "CLONE")
	}
	data := pterm.TableData{header}

	for _, p := range report.Packages {
		stateLabel := pterm.FgGray.Sprint("unbound")
		if p.Bound {
			stateLabel = pterm.FgGreen.Sprint("bound")
		}
		link := string(p.Link)
		if len(p.Drift) > 0 {
			link = pterm.FgYellow.Sprint(link)
		}
		row := []string{p.Name, stateLabel, p.Group.String(), link, p.File}
		if verbose {
			row = append(row, recordedVersion(p), cloneVersion(p))
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("rendering status table: %w", err)
	}
	fmt.Fprintln(w, table)

	if verbose {
		for _, p := range report.Packages {
			for _, m := range p.Members {
				fmt.Fprintf(w, "  %s in %s: %s\n", p.Name, m.Member, m.Link)
			}
		}
	}

	printDrift(w, report)
	return nil
}

func recordedVersion(p linker.PackageStatus) string {
	switch {
	case !p.Bound:
		return "-"
	case p.Record.PriorVersion() == "":
		return "(none)"
	default:
		return p.Record.PriorVersion()
	}
}

func cloneVersion(p linker.PackageStatus) string {
	if !p.RepoPresent {
		return pterm.FgRed.Sprint("missing")
	}
	v := p.RepoVersion
	if v == "" {
		v = "?"
	}
	if p.RepoSatisfies != nil && !*p.RepoSatisfies {
		v += pterm.FgYellow.Sprint(" (outside recorded range)")
	}
	return v
}

func printDrift(w io.Writer, report *linker.StatusReport) {
	if !report.HasDrift() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, pterm.FgYellow.Sprint("Drift:"))
	if len(report.Duplicates) > 0 {
		fmt.Fprintf(w, "  recorded in both state files: %s\n", strings.Join(report.Duplicates, ", "))
	}
	for _, p := range report.Packages {
		for _, d := range p.Drift {
			fmt.Fprintf(w, "  %s: %s\n", p.Name, d)
		}
	}
}
