package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// RowSource yields raw tab-separated rows one at a time. Read returns io.EOF
// once the source is exhausted.
type RowSource interface {
	Read() ([]string, error)
	// Name identifies the source in error messages
	Name() string
	// Row is the 1-based line in the file where the row last returned by
	// Read starts
	Row() int
}

// Reader is a RowSource over a tab-separated file, optionally gzip-compressed
type Reader struct {
	name   string
	csv     *csv.Reader
	line    int
	records int
	closer  []io.Closer
}

// Open opens path for streaming. Files ending in .gz are decompressed on the
// fly. When hasHeader is set the first row is consumed and discarded.
func Open(path string, hasHeader bool) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}

	r := &Reader{name: path, closer: []io.Closer{f}}
	var src io.Reader = bufio.NewReaderSize(f, 1<<20)

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(src)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("error creating gzip reader for %s: %w", path, err)
		}
		r.closer = append([]io.Closer{gz}, r.closer...)
		src = gz
	}

	r.csv = NewTSVReader(src)

	if hasHeader {
		if _, err := r.csv.Read(); err != nil && !errors.Is(err, io.EOF) {
			r.Close()
			return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
		}
	}

	return r, nil
}

// NewTSVReader configures a csv.Reader for the export format: tab delimited,
// no fixed field count, tolerant of stray quotes.
func NewTSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

func (r *Reader) Read() ([]string, error) {
	fields, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.name, err)
	}
	// csv skips blank lines and quoted fields may span lines, so the record
	// count is not the line number
	r.line, _ = r.csv.FieldPos(0)
	r.records++
	return fields, nil
}

func (r *Reader) Name() string {
	return r.name
}

func (r *Reader) Row() int {
	return r.line
}

// Records returns how many data rows have been read, header excluded
func (r *Reader) Records() int {
	return r.records
}

// Close releases the gzip stream and the underlying file
func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closer {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
