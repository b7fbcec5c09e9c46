package main

import (
	"fmt"
	"os"

	"github.com/lnr-labs/lnr/internal/cli"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(lnrerrors.ExitCode(err))
	}
}
