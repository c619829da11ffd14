// Package treefile writes the finished catalog tree to a text file.
package treefile

import (
	"fmt"
	"log/slog"
	"os"

	"fred-catalog/tree"
)

// Write renders the tree to path, replacing any previous file. An error is
// returned so the caller can log it, but a failed write is never fatal: the
// crawl's statistics and cache are still valid.
func Write(path string, t *tree.Tree) error {
	// Remove the stale file first; a missing file is the common case.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Debug("could not remove previous tree file", "path", path, "error", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create tree file: %w", err)
	}
	defer f.Close()

	if err := t.Render(f); err != nil {
		return fmt.Errorf("render tree: %w", err)
	}

	slog.Info("tree file written", "path", path, "nodes", t.Size())
	return nil
}
