package project

import (
	"os"
	"path/filepath"

	"github.com/lnr-labs/lnr/internal/branding"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

// Locate walks upward from start looking for the state file marker and
// returns the first directory that holds it.
func Locate(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", lnrerrors.Wrapf(err, lnrerrors.ErrNotInitialized, "resolving %s", start)
	}

	for {
		marker := filepath.Join(dir, branding.StateFile())
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", lnrerrors.Newf(lnrerrors.ErrNotInitialized,
				"no %s found in %s or any parent directory; run '%s init'",
				branding.StateFile(), start, branding.CLIName())
		}
		dir = parent
	}
}
