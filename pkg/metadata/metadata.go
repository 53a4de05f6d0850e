// Package metadata writes an attribution sidecar next to each downloaded
// image. iNaturalist photos carry per-photo licenses, so a dataset built from
// them usually needs to keep the license and observer alongside the file.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"inatfetch/pkg/dataset"
)

// Suffix is appended to the image path to name its sidecar
const Suffix = ".json"

// PhotoMetadata describes one downloaded image
type PhotoMetadata struct {
	// Core identifiers
	PhotoID         string `json:"photo_id"`
	PhotoUUID       string `json:"photo_uuid,omitempty"`
	ObservationUUID string `json:"observation_uuid"`
	TaxonID         string `json:"taxon_id"`
	Label           string `json:"label"`
	SourceURI       string `json:"source_uri"`

	// Media properties
	Extension string `json:"extension"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	FileSize  int64  `json:"file_size,omitempty"`

	// Attribution
	License    string `json:"license,omitempty"`
	ObserverID string `json:"observer_id,omitempty"`

	// Observation context
	Latitude     string `json:"latitude,omitempty"`
	Longitude    string `json:"longitude,omitempty"`
	QualityGrade string `json:"quality_grade,omitempty"`
	ObservedOn   string `json:"observed_on,omitempty"`

	DownloadedAt time.Time `json:"downloaded_at"`
}

// FromMatch builds the sidecar for a joined record
func FromMatch(m dataset.Match, label, uri string, fileSize int64) *PhotoMetadata {
	observer := m.Photo.ObserverID
	if observer == "" {
		observer = m.Observation.ObserverID
	}

	return &PhotoMetadata{
		PhotoID:         m.Photo.PhotoID,
		PhotoUUID:       m.Photo.UUID,
		ObservationUUID: m.Observation.UUID,
		TaxonID:         m.Observation.TaxonID,
		Label:           label,
		SourceURI:       uri,
		Extension:       m.Photo.Extension,
		Width:           atoi(m.Photo.Width),
		Height:          atoi(m.Photo.Height),
		FileSize:        fileSize,
		License:         m.Photo.License,
		ObserverID:      observer,
		Latitude:        m.Observation.Latitude,
		Longitude:       m.Observation.Longitude,
		QualityGrade:    m.Observation.QualityGrade,
		ObservedOn:      m.Observation.ObservedOn,
		DownloadedAt:    time.Now().UTC(),
	}
}

// atoi returns 0 for empty or non-numeric dimensions
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Save writes the metadata next to the image at photoPath
func (m *PhotoMetadata) Save(photoPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(photoPath+Suffix, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads the sidecar of the image at photoPath
func Load(photoPath string) (*PhotoMetadata, error) {
	data, err := os.ReadFile(photoPath + Suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta PhotoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// Exists checks if a sidecar exists for the image at photoPath
func Exists(photoPath string) bool {
	_, err := os.Stat(photoPath + Suffix)
	return err == nil
}
