package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lnr-labs/lnr/internal/branding"
	"github.com/lnr-labs/lnr/internal/config"
	"github.com/lnr-labs/lnr/internal/fetcher"
	"github.com/lnr-labs/lnr/internal/linker"
	"github.com/lnr-labs/lnr/internal/logging"
	"github.com/lnr-labs/lnr/internal/project"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	workDir   string
	verbosity int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "C", "", "Run as if started in this directory")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose-log", "v", "Increase log verbosity (-v, -vv, -vvv)")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` swaps a published npm dependency for a local clone and back.

Clones live in a cache directory inside the project. Binding a package points
package.json at the clone and symlinks it into node_modules; unbinding puts
the published version back.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetupLogger(verbosity)
		config.Load()
	},
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// startDir returns the absolute directory commands start from.
func startDir() (string, error) {
	dir := workDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = cwd
	}
	return filepath.Abs(dir)
}

func layoutFor(root string) project.Layout {
	s := config.Current()
	return project.NewLayout(root, s.CacheDir, s.ModulesDir)
}

// openEngine locates the project containing the start directory and returns
// an engine for it.
func openEngine() (*linker.Engine, error) {
	dir, err := startDir()
	if err != nil {
		return nil, err
	}
	root, err := project.Locate(dir)
	if err != nil {
		return nil, err
	}

	s := config.Current()
	return linker.New(linker.Options{
		Layout: layoutFor(root),
		Cloner: fetcher.GitCloner{Binary: s.GitBinary, Depth: s.CloneDepth},
	}), nil
}

// withLock runs fn while holding the project lock.
func withLock(ctx context.Context, engine *linker.Engine, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lockCtx, cancel := context.WithTimeout(ctx, config.Current().LockTimeout)
	defer cancel()

	unlock, err := project.Lock(lockCtx, engine.Layout())
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}
