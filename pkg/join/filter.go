package join

import (
	"errors"
	"fmt"
	"io"

	"inatfetch/pkg/dataset"
)

// FilterObservations streams rows once and keeps the observations whose
// taxon id is in allow. The result is keyed by observation uuid. When an
// uuid repeats, the later row wins.
func FilterObservations(rows dataset.RowSource, allow map[string]string) (map[string]dataset.Observation, error) {
	kept := make(map[string]dataset.Observation)

	for {
		fields, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read observations: %w", err)
		}

		obs, err := dataset.DecodeObservation(fields, rows.Name(), rows.Row())
		if err != nil {
			return nil, err
		}

		if _, ok := allow[obs.TaxonID]; ok {
			kept[obs.UUID] = obs
		}
	}

	return kept, nil
}
