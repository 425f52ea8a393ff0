package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// Firebase uploads artifacts to the app's default Cloud Storage bucket.
type Firebase struct {
	bucket *gcs.BucketHandle
}

// NewFirebase resolves the default bucket of app.
func NewFirebase(ctx context.Context, app *firebase.App) (*Firebase, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase storage: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("firebase storage: %w", err)
	}
	return &Firebase{bucket: bucket}, nil
}

// Upload implements Uploader.
func (u *Firebase) Upload(ctx context.Context, prefix, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("firebase upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	key := Key(prefix, localPath)
	w := u.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("firebase upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("firebase upload %s: %w", key, err)
	}
	return key, nil
}
