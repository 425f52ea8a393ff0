// Package storage uploads run artifacts to an object store.
package storage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrSkipped is reported by backends configured to upload nothing.
var ErrSkipped = errors.New("upload skipped")

// Uploader stores a local file under a key derived from prefix and the file
// name and returns that key.
type Uploader interface {
	Upload(ctx context.Context, prefix, localPath string) (string, error)
}

// Key joins prefix and the base name of localPath with "/".
func Key(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Result is the tagged outcome of one upload attempt. RemoteKey is set only
// when the upload succeeded.
type Result struct {
	LocalPath string
	RemoteKey string
	Err       error
}

// OK reports whether the artifact was stored.
func (r Result) OK() bool { return r.Err == nil && r.RemoteKey != "" }

// Attempt uploads localPath exactly once and folds any failure into the result.
func Attempt(ctx context.Context, u Uploader, prefix, localPath string) Result {
	res := Result{LocalPath: localPath}
	if u == nil {
		res.Err = ErrSkipped
		return res
	}
	key, err := u.Upload(ctx, prefix, localPath)
	if err != nil {
		res.Err = err
		return res
	}
	res.RemoteKey = key
	return res
}

// None is an Uploader that stores nothing.
type None struct{}

// Upload implements Uploader.
func (None) Upload(context.Context, string, string) (string, error) { return "", ErrSkipped }
