// Package cleanup deletes intermediate pipeline artifacts by category.
package cleanup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Target selects which artifact category to delete.
type Target string

const (
	TargetFrames       Target = "frames"       // frames/ directories
	TargetDescription  Target = "description"  // *.description.json
	TargetDescriptions Target = "descriptions" // *.descriptions.json (final documents)
	TargetScenes       Target = "scenes"       // *.scene.json
	TargetPurge        Target = "purge"        // everything, with confirmation
)

// ErrCancelled is returned when a purge is declined at the prompt.
var ErrCancelled = errors.New("operation cancelled")

// ParseTarget validates a CLI target argument.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetFrames, TargetDescription, TargetDescriptions, TargetScenes, TargetPurge:
		return Target(s), nil
	default:
		return "", fmt.Errorf("unknown clean target %q (expected frames, description, descriptions, scenes, or purge)", s)
	}
}

type Cleaner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean deletes the target category under root and returns how many files
// and directories were removed. Deletion is best-effort per entry: a missing
// file is simply absent, and individual failures are logged, not fatal.
// Purge calls confirm before touching anything and deletes every category
// when it returns true.
func (c *Cleaner) Clean(root string, target Target, confirm func() bool) (int, error) {
	if _, err := os.Stat(root); err != nil {
		return 0, fmt.Errorf("path %q does not exist: %w", root, err)
	}

	if target == TargetPurge {
		if confirm == nil || !confirm() {
			return 0, ErrCancelled
		}
		deleted := c.removeFramesDirs(root)
		deleted += c.removeBySuffix(root, ".description.json")
		deleted += c.removeBySuffix(root, ".descriptions.json")
		deleted += c.removeBySuffix(root, ".scene.json")
		return deleted, nil
	}

	switch target {
	case TargetFrames:
		return c.removeFramesDirs(root), nil
	case TargetDescription:
		return c.removeBySuffix(root, ".description.json"), nil
	case TargetDescriptions:
		return c.removeBySuffix(root, ".descriptions.json"), nil
	case TargetScenes:
		return c.removeBySuffix(root, ".scene.json"), nil
	default:
		return 0, fmt.Errorf("unknown clean target %q", target)
	}
}

// removeFramesDirs deletes every frames/ directory under root, contents
// included.
func (c *Cleaner) removeFramesDirs(root string) int {
	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "frames" {
			dirs = append(dirs, path)
			return filepath.SkipDir
		}
		return nil
	})
	sort.Strings(dirs)

	deleted := 0
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil {
			c.logger.Warn("could not delete frames directory", "dir", dir, "error", err)
			continue
		}
		c.logger.Info("deleted", "path", dir)
		deleted++
	}
	return deleted
}

// removeBySuffix deletes every file under root whose name ends in suffix.
// The ".description.json" and ".descriptions.json" suffixes cannot match
// each other's files, so a plain suffix check is exact.
func (c *Cleaner) removeBySuffix(root, suffix string) int {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)

	deleted := 0
	for _, file := range files {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("could not delete file", "path", file, "error", err)
			continue
		}
		c.logger.Info("deleted", "path", file)
		deleted++
	}
	return deleted
}
