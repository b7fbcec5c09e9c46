package project

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
	"github.com/lnr-labs/lnr/internal/branding"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

const emptyState = "{\n  \"packages\": {}\n}\n"

// Init bootstraps an lnr project in layout.Root: both state files, the
// managed cache directory and the .gitignore entries for private files.
func Init(layout Layout) error {
	if _, err := os.Stat(layout.StatePath()); err == nil {
		return lnrerrors.Newf(lnrerrors.ErrConflict, "project already initialized: %s exists", layout.StatePath())
	}

	if err := os.MkdirAll(layout.CachePath(), 0755); err != nil {
		return lnrerrors.Wrap(err, lnrerrors.ErrFilesystem, "creating cache directory")
	}

	for _, path := range []string{layout.StatePath(), layout.LocalStatePath()} {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := renameio.WriteFile(path, []byte(emptyState), 0644); err != nil {
			return lnrerrors.Wrapf(err, lnrerrors.ErrFilesystem, "writing %s", path)
		}
	}

	for _, line := range []string{"/" + branding.LocalStateFile(), "/" + layout.CacheDir + "/", "/" + branding.LockFile()} {
		if err := AddToGitignore(layout.Root, line); err != nil {
			return lnrerrors.Wrap(err, lnrerrors.ErrFilesystem, fmt.Sprintf("updating .gitignore with %s", line))
		}
	}

	return nil
}
