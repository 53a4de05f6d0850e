package dataset

import (
	errs "inatfetch/pkg/errors"
)

// Column offsets of the iNaturalist open-data exports. These are the only
// place the positional layout is spelled out.
const (
	obsColUUID = iota
	obsColObserverID
	obsColLatitude
	obsColLongitude
	obsColPositionalAccuracy
	obsColTaxonID
	obsColQualityGrade
	obsColObservedOn
)

const (
	photoColUUID = iota
	photoColPhotoID
	photoColObservationUUID
	photoColObserverID
	photoColExtension
	photoColLicense
	photoColWidth
	photoColHeight
	photoColPosition
)

const (
	// MinObservationFields is the field count needed to reach taxon_id
	MinObservationFields = obsColTaxonID + 1
	// MinPhotoFields is the field count needed to reach extension
	MinPhotoFields = photoColExtension + 1
)

// Observation is one row of observations.csv
type Observation struct {
	UUID               string
	ObserverID         string
	Latitude           string
	Longitude          string
	PositionalAccuracy string
	TaxonID            string
	QualityGrade       string
	ObservedOn         string

	// Fields is the raw row as read
	Fields []string
}

// Photo is one row of photos.csv
type Photo struct {
	UUID            string
	PhotoID         string
	ObservationUUID string
	ObserverID      string
	Extension       string
	License         string
	Width           string
	Height          string
	Position        string

	// Fields is the raw row as read
	Fields []string
}

// Match is a photo together with the observation it belongs to
type Match struct {
	Photo       Photo
	Observation Observation
}

// Fields returns the photo fields followed by the observation fields
func (m Match) Fields() []string {
	out := make([]string, 0, len(m.Photo.Fields)+len(m.Observation.Fields))
	out = append(out, m.Photo.Fields...)
	return append(out, m.Observation.Fields...)
}

// PhotoID, Extension and TaxonID are the three fields the fetcher needs
func (m Match) PhotoID() string   { return m.Photo.PhotoID }
func (m Match) Extension() string { return m.Photo.Extension }
func (m Match) TaxonID() string   { return m.Observation.TaxonID }

// DecodeObservation turns a raw row into an Observation. file and row only
// feed the error message.
func DecodeObservation(fields []string, file string, row int) (Observation, error) {
	if len(fields) < MinObservationFields {
		return Observation{}, errs.MalformedRow(file, row, len(fields), MinObservationFields)
	}
	return Observation{
		UUID:               fields[obsColUUID],
		ObserverID:         fields[obsColObserverID],
		Latitude:           fields[obsColLatitude],
		Longitude:          fields[obsColLongitude],
		PositionalAccuracy: fields[obsColPositionalAccuracy],
		TaxonID:            fields[obsColTaxonID],
		QualityGrade:       column(fields, obsColQualityGrade),
		ObservedOn:         column(fields, obsColObservedOn),
		Fields:             fields,
	}, nil
}

// DecodePhoto turns a raw row into a Photo
func DecodePhoto(fields []string, file string, row int) (Photo, error) {
	if len(fields) < MinPhotoFields {
		return Photo{}, errs.MalformedRow(file, row, len(fields), MinPhotoFields)
	}
	return Photo{
		UUID:            fields[photoColUUID],
		PhotoID:         fields[photoColPhotoID],
		ObservationUUID: fields[photoColObservationUUID],
		ObserverID:      fields[photoColObserverID],
		Extension:       fields[photoColExtension],
		License:         column(fields, photoColLicense),
		Width:           column(fields, photoColWidth),
		Height:          column(fields, photoColHeight),
		Position:        column(fields, photoColPosition),
		Fields:          fields,
	}, nil
}

// column returns fields[i], or "" for trailing optional columns that are absent
func column(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}
