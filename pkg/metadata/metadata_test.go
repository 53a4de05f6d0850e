package metadata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inatfetch/pkg/dataset"
)

func testMatch() dataset.Match {
	return dataset.Match{
		Photo: dataset.Photo{
			UUID:            "pu1",
			PhotoID:         "123",
			ObservationUUID: "o1",
			ObserverID:      "42",
			Extension:       "jpg",
			License:         "CC-BY-NC",
			Width:           "240",
			Height:          "n/a",
		},
		Observation: dataset.Observation{
			UUID:         "o1",
			ObserverID:   "42",
			Latitude:     "35.1",
			Longitude:    "-80.2",
			TaxonID:      "60598",
			QualityGrade: "research",
			ObservedOn:   "2021-06-01",
		},
	}
}

func TestFromMatch(t *testing.T) {
	meta := FromMatch(testMatch(), "ixodes scapularis", "s3://bucket/photos/123/small.jpg", 2048)

	assert.Equal(t, "123", meta.PhotoID)
	assert.Equal(t, "o1", meta.ObservationUUID)
	assert.Equal(t, "60598", meta.TaxonID)
	assert.Equal(t, "ixodes scapularis", meta.Label)
	assert.Equal(t, "CC-BY-NC", meta.License)
	assert.Equal(t, 240, meta.Width)
	assert.Equal(t, 0, meta.Height)
	assert.Equal(t, int64(2048), meta.FileSize)
	assert.False(t, meta.DownloadedAt.IsZero())
}

func TestSaveAndLoad(t *testing.T) {
	photoPath := filepath.Join(t.TempDir(), "123.jpg")
	assert.False(t, Exists(photoPath))

	meta := FromMatch(testMatch(), "tick", "s3://bucket/photos/123/small.jpg", 10)
	require.NoError(t, meta.Save(photoPath))
	assert.True(t, Exists(photoPath))
	assert.FileExists(t, photoPath+".json")

	loaded, err := Load(photoPath)
	require.NoError(t, err)
	assert.Equal(t, meta.SourceURI, loaded.SourceURI)
	assert.Equal(t, meta.License, loaded.License)
	assert.True(t, meta.DownloadedAt.Equal(loaded.DownloadedAt))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.jpg"))
	assert.Error(t, err)
}
