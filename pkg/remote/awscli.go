package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// CLIGetter shells out to the aws command line tool and streams the object
// through stdout.
type CLIGetter struct {
	path string
}

// NewCLIGetter uses the aws binary at path, or "aws" from PATH when empty
func NewCLIGetter(path string) *CLIGetter {
	if path == "" {
		path = "aws"
	}
	return &CLIGetter{path: path}
}

func (g *CLIGetter) Get(ctx context.Context, uri string) (io.ReadCloser, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, g.path, "s3", "cp", "--no-sign-request", "--only-show-errors", uri, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s s3 cp %s: %w", g.path, uri, err)
		}
		return nil, fmt.Errorf("%s s3 cp %s: %w: %s", g.path, uri, err, msg)
	}

	return io.NopCloser(&stdout), nil
}
