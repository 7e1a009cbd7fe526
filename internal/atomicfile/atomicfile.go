// Package atomicfile publishes files only once they are completely written.
//
// Content is produced into a pending file next to the destination and
// renamed over it on success. On failure the pending file is removed, so
// readers never observe a partial file.
package atomicfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// WriteFunc produces the file content
type WriteFunc func(w io.Writer) error

// Write creates or replaces path with the content produced by fn
func Write(path string, perm os.FileMode, fn WriteFunc) error {
	pf, err := renameio.NewPendingFile(path, options(path, perm)...)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer pf.Cleanup()

	if err := fn(pf); err != nil {
		return err
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteBytes creates or replaces path with data
func WriteBytes(path string, perm os.FileMode, data []byte) error {
	if err := renameio.WriteFile(path, data, perm, options(path, perm)...); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// options keep the pending file in the destination directory
func options(path string, perm os.FileMode) []renameio.Option {
	return []renameio.Option{
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithStaticPermissions(perm),
	}
}
