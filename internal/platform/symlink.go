package platform

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LinkKind classifies what occupies a path.
type LinkKind int

const (
	// KindMissing means nothing exists at the path.
	KindMissing LinkKind = iota
	// KindSymlink means the path is a symbolic link.
	KindSymlink
	// KindDir means the path is a real directory.
	KindDir
	// KindFile means the path is a regular (or other non-directory) file.
	KindFile
)

// Inspect reports what occupies path without following symlinks.
func Inspect(path string) (LinkKind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return KindMissing, nil
		}
		return KindMissing, err
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return KindSymlink, nil
	case info.IsDir():
		return KindDir, nil
	default:
		return KindFile, nil
	}
}

// CreateSymlink creates link pointing at target. The stored target is
// relative to the link's parent directory so the project can be moved as a
// whole. Missing parent directories of link are created.
func CreateSymlink(target, link string) error {
	parent := filepath.Dir(link)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("creating link parent %s: %w", parent, err)
	}

	rel, err := filepath.Rel(parent, target)
	if err != nil {
		rel = target
	}
	return os.Symlink(rel, link)
}

// RemoveSymlink removes the symlink at path. It refuses to remove anything
// that is not a symlink; a missing path is not an error.
func RemoveSymlink(path string) error {
	kind, err := Inspect(path)
	if err != nil {
		return err
	}
	switch kind {
	case KindMissing:
		return nil
	case KindSymlink:
		return os.Remove(path)
	default:
		return fmt.Errorf("%s is not a symlink", path)
	}
}

// ReadSymlinkTarget returns the absolute, cleaned target of the symlink at
// path. Relative targets are resolved against the link's parent directory.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}

// IsWithin reports whether p is dir or a descendant of dir. Both are
// compared lexically after cleaning.
func IsWithin(p, dir string) bool {
	p = filepath.Clean(p)
	dir = filepath.Clean(dir)
	if p == dir {
		return true
	}
	return strings.HasPrefix(p, dir+string(filepath.Separator))
}

// Move renames src to dst, creating dst's parent directories first. An
// existing dst is replaced.
func Move(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating parent of %s: %w", dst, err)
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("clearing %s: %w", dst, err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}
	return nil
}

// DirExists reports whether path exists and is a directory (following
// symlinks).
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
