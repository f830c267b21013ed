package log

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// rotate deletes the oldest files in dir whose names start with prefix until
// adding keep would leave at most max of them. keep itself is never deleted,
// so an existing file for today is appended to rather than recreated.
// Names embed the date, so lexical order is chronological order.
func rotate(fs afero.Fs, dir, prefix, keep string, max int) error {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrRotation, dir, err)
	}

	var logs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || name == keep {
			continue
		}
		logs = append(logs, name)
	}
	sort.Strings(logs)

	for len(logs) >= max {
		path := filepath.Join(dir, logs[0])
		if err := fs.Remove(path); err != nil {
			return fmt.Errorf("%w: removing %s: %w", ErrRotation, path, err)
		}
		logs = logs[1:]
	}
	return nil
}
