// Package settings provides per-user storage for resxkit.
//
// Everything lives in the XDG data directory:
//
//	$XDG_DATA_HOME/resxkit/  (default: ~/.local/share/resxkit/)
//
// Files stored:
//   - recent.txt: most recently opened resource files, newest first, one
//     absolute path per line
package settings

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dataDirName    = "resxkit"
	recentFileName = "recent.txt"

	// DefaultRecentLimit is used when a caller passes a limit below 1.
	DefaultRecentLimit = 10
)

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for resxkit.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// DataDir returns the resxkit data directory path.
func DataDir() (string, error) {
	return dataDir()
}

func recentPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, recentFileName), nil
}

// RecentPath returns the recent.txt path for display purposes.
func RecentPath() string {
	p, err := recentPath()
	if err != nil {
		return ""
	}
	return p
}

// ---------------------------------------------------------------------------
// Load / Add / Clear
// ---------------------------------------------------------------------------

// LoadRecent reads the recent-files list, newest first.
// Returns nil if the file doesn't exist or can't be read.
func LoadRecent() []string {
	path, err := recentPath()
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var list []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		list = append(list, line)
	}
	return list
}

// AddRecent moves path to the front of the list, dropping older duplicates
// and trimming to limit entries. It returns the stored list.
func AddRecent(path string, limit int) ([]string, error) {
	if limit < 1 {
		limit = DefaultRecentLimit
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	list := []string{abs}
	for _, p := range LoadRecent() {
		if p != abs {
			list = append(list, p)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	if err := saveRecent(list); err != nil {
		return nil, err
	}
	return list, nil
}

func saveRecent(list []string) error {
	path, err := recentPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	var b strings.Builder
	for _, p := range list {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("writing recent files list: %w", err)
	}
	return nil
}

// ClearRecent removes the recent-files list.
func ClearRecent() error {
	path, err := recentPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing recent files list: %w", err)
	}
	return nil
}
