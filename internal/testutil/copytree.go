// Package testutil holds helpers shared by end-to-end tests.
package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
)

// CopyTree replaces dst with a copy of src, keeping file permissions so
// fixture scripts stay executable.
func CopyTree(src, dst string) error {
	_ = os.RemoveAll(dst)
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, 0o755)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(out, b, info.Mode().Perm())
	})
}
