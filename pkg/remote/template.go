package remote

import (
	"fmt"
	"strings"

	"inatfetch/pkg/config"
	errs "inatfetch/pkg/errors"
)

// Template builds object URIs from a photo id and file extension
type Template struct {
	raw string
}

// ParseTemplate checks that raw carries both placeholders
func ParseTemplate(raw string) (Template, error) {
	for _, p := range []string{config.PhotoIDPlaceholder, config.ExtensionPlaceholder} {
		if !strings.Contains(raw, p) {
			return Template{}, errs.Config(fmt.Sprintf("uri template %q is missing %s", raw, p))
		}
	}
	return Template{raw: raw}, nil
}

// Expand substitutes photoID and ext into the template
func (t Template) Expand(photoID, ext string) string {
	return strings.NewReplacer(
		config.PhotoIDPlaceholder, photoID,
		config.ExtensionPlaceholder, ext,
	).Replace(t.raw)
}

func (t Template) String() string {
	return t.raw
}

// ParseS3URI splits s3://bucket/key into its bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri needs a bucket and a key: %s", uri)
	}
	return bucket, key, nil
}
