package linker

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	lnrerrors "github.com/lnr-labs/lnr/internal/errors"
)

// ValidateVersion accepts a strict semantic version optionally prefixed
// with "^" or "~", the forms lnr writes back into package.json.
func ValidateVersion(version string) error {
	if _, err := parseVersion(version); err != nil {
		return lnrerrors.Wrapf(err, lnrerrors.ErrInvalidVersion,
			"%q is not a semantic version (optionally prefixed with ^ or ~)", version)
	}
	return nil
}

func parseVersion(version string) (*semver.Version, error) {
	if strings.HasPrefix(version, "^") || strings.HasPrefix(version, "~") {
		version = version[1:]
	}
	return semver.StrictNewVersion(version)
}

// satisfies reports whether the repository version falls inside the range
// the manifest declared before binding. ok is false when either side cannot
// be parsed.
func satisfies(declared, repoVersion string) (result bool, ok bool) {
	if declared == "" || repoVersion == "" {
		return false, false
	}
	c, err := semver.NewConstraint(declared)
	if err != nil {
		return false, false
	}
	v, err := semver.NewVersion(repoVersion)
	if err != nil {
		return false, false
	}
	return c.Check(v), true
}
