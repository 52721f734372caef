package ingest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Downloader fetches an object to a local scratch path.
type Downloader interface {
	Download(ctx context.Context, bucket, key, destPath string) error
}

// S3Downloader downloads via aws-sdk-go-v2/service/s3, the same client
// family already wired for the Extractor's Textract calls.
type S3Downloader struct {
	client *s3.Client
}

// NewS3Downloader wraps an already-configured S3 client.
func NewS3Downloader(client *s3.Client) *S3Downloader {
	return &S3Downloader{client: client}
}

// Download streams bucket/key to destPath, overwriting any existing file.
func (d *S3Downloader) Download(ctx context.Context, bucket, key, destPath string) error {
	out, err := d.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("ingest: download s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("ingest: create scratch file %s: %w", destPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("ingest: write scratch file %s: %w", destPath, err)
	}
	return nil
}
