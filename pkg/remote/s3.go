package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the SDK client. Endpoint is only set for
// S3-compatible stores other than AWS.
type S3Config struct {
	Region   string
	Endpoint string
}

// S3Getter reads objects without signing requests, the SDK equivalent of
// `aws s3 cp --no-sign-request`.
type S3Getter struct {
	downloader *manager.Downloader
}

// NewS3Getter builds an anonymous S3 client
func NewS3Getter(ctx context.Context, cfg S3Config) (*S3Getter, error) {
	opts := []func(*aws_config.LoadOptions) error{
		aws_config.WithCredentialsProvider(aws.AnonymousCredentials{}),
	}
	if cfg.Region != "" {
		opts = append(opts, aws_config.WithRegion(cfg.Region))
	}

	awsCfg, err := aws_config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// custom endpoints (MinIO and friends) rarely support virtual-host addressing
			o.UsePathStyle = true
		}
	})

	return NewS3GetterFromClient(client), nil
}

// NewS3GetterFromClient wraps an existing client
func NewS3GetterFromClient(client manager.DownloadAPIClient) *S3Getter {
	return &S3Getter{
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) {
			d.Concurrency = 1
		}),
	}
}

// Get downloads the whole object into memory. The objects are small
// thumbnails, so buffering keeps the reader simple.
func (g *S3Getter) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}

	buffer := manager.NewWriteAtBuffer(nil)
	_, err = g.downloader.Download(ctx, buffer, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	return io.NopCloser(bytes.NewReader(buffer.Bytes())), nil
}
