package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMalformedRowMessage(t *testing.T) {
	err := MalformedRow("observations.csv", 12, 3, 6)

	assert.Equal(t, ErrorTypeMalformedRow, err.Type)
	assert.Equal(t, "malformed_row error: row has 3 fields, need at least 6 (observations.csv row 12)", err.Error())
}

func TestFetchUnwraps(t *testing.T) {
	err := Fetch("s3://bucket/key", io.ErrUnexpectedEOF)

	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))

	var typed *Error
	assert.True(t, stderrors.As(err, &typed))
	assert.Equal(t, ErrorTypeFetch, typed.Type)
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		fatal     bool
	}{
		{ErrorTypeMalformedRow, true},
		{ErrorTypeConfig, true},
		{ErrorTypeFetch, false},
		{ErrorTypeFilesystem, false},
		{ErrorTypeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.fatal, IsFatal(tt.errorType))
		})
	}
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("fetching record: %w", Fetch("s3://bucket/key", io.EOF))

	assert.Equal(t, ErrorTypeFetch, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeConfig, TypeOf(Config("bad template")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(io.EOF))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}
