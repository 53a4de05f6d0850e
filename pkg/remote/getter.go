// Package remote fetches image objects from the open-data bucket.
//
// A Getter turns a fully resolved URI into a byte stream. Three
// implementations exist: the AWS SDK reading s3:// URIs anonymously, the aws
// command line tool doing the same through a subprocess, and a plain HTTP
// client for the bucket's https endpoint.
package remote

import (
	"context"
	"fmt"
	"io"
	"strings"

	"inatfetch/pkg/config"
	errs "inatfetch/pkg/errors"
)

// Getter fetches the object at uri. The caller closes the returned reader.
type Getter interface {
	Get(ctx context.Context, uri string) (io.ReadCloser, error)
}

// New builds the Getter selected by cfg.Fetcher
func New(ctx context.Context, cfg config.RemoteConfig) (Getter, error) {
	switch strings.ToLower(cfg.Fetcher) {
	case config.FetcherS3, "":
		return NewS3Getter(ctx, S3Config{
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
		})
	case config.FetcherAWSCLI:
		return NewCLIGetter(cfg.AWSCLIPath), nil
	case config.FetcherHTTP:
		return NewHTTPGetter(), nil
	default:
		return nil, errs.Config(fmt.Sprintf("unknown fetcher %q", cfg.Fetcher))
	}
}
