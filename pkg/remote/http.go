package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"
)

// HTTPGetter fetches objects over plain HTTP(S)
type HTTPGetter struct {
	client *resty.Client
}

func NewHTTPGetter() *HTTPGetter {
	return NewHTTPGetterFromClient(resty.New())
}

// NewHTTPGetterFromClient wraps a preconfigured resty client
func NewHTTPGetterFromClient(client *resty.Client) *HTTPGetter {
	return &HTTPGetter{client: client}
}

func (g *HTTPGetter) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	res, err := g.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(uri)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", uri, err)
	}

	body := res.RawBody()
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		if body != nil {
			body.Close()
		}
		return nil, fmt.Errorf("GET %s: unexpected status %s", uri, res.Status())
	}

	return body, nil
}
