package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3PutAPI is the subset of the S3 client used for uploads.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 uploads artifacts to an S3 bucket.
type S3 struct {
	client S3PutAPI
	bucket string
}

// NewS3 loads the default AWS configuration chain (environment, shared
// config, instance role) and returns an S3 uploader for bucket.
func NewS3(ctx context.Context, bucket, region string) (*S3, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return NewS3WithClient(s3.NewFromConfig(cfg), bucket), nil
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client S3PutAPI, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Upload implements Uploader.
func (u *S3) Upload(ctx context.Context, prefix, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("s3 upload: %w", err)
	}
	defer func() { _ = f.Close() }()
	key := Key(prefix, localPath)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return key, nil
}
