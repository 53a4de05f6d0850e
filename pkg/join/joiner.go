package join

import (
	"errors"
	"fmt"
	"io"

	"inatfetch/pkg/dataset"
)

// JoinPhotos streams photo rows once and pairs each with its observation.
//
// Only the first photo row of an observation is emitted; once matched the
// observation leaves the remaining set and later photos for it are dropped.
// The pass stops as soon as the remaining set is empty, so rows after the
// last match are never read. observations itself is left untouched.
func JoinPhotos(observations map[string]dataset.Observation, rows dataset.RowSource) ([]dataset.Match, error) {
	remaining := make(map[string]struct{}, len(observations))
	for uuid := range observations {
		remaining[uuid] = struct{}{}
	}

	var matches []dataset.Match

	// invariant: remaining holds exactly the uuids not yet matched
	for len(remaining) > 0 {
		fields, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read photos: %w", err)
		}

		photo, err := dataset.DecodePhoto(fields, rows.Name(), rows.Row())
		if err != nil {
			return nil, err
		}

		if _, ok := remaining[photo.ObservationUUID]; !ok {
			continue
		}

		matches = append(matches, dataset.Match{
			Photo:       photo,
			Observation: observations[photo.ObservationUUID],
		})
		delete(remaining, photo.ObservationUUID)
	}

	return matches, nil
}
