package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local copies artifacts below Root, mirroring the remote key layout.
type Local struct {
	Root string
}

// Upload implements Uploader.
func (l Local) Upload(ctx context.Context, prefix, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := Key(prefix, localPath)
	dst := filepath.Join(l.Root, filepath.FromSlash(key))
	if rel, err := filepath.Rel(l.Root, dst); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("local upload: key %q escapes %s", key, l.Root)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	defer func() { _ = src.Close() }()
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("local upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("local upload: %w", err)
	}
	return key, nil
}
