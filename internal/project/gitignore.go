package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AddToGitignore appends line to root/.gitignore unless it is already
// present.
func AddToGitignore(root, line string) error {
	gitignorePath := filepath.Join(root, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	for _, l := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(l) == line {
			return nil
		}
	}

	suffix := line + "\n"
	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		suffix = "\n" + suffix
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening .gitignore for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(suffix); err != nil {
		return fmt.Errorf("writing to .gitignore: %w", err)
	}
	return nil
}
