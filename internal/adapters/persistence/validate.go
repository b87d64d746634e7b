package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/okian/admitcalc/internal/domain/model"
)

// DecodeInstitutions parses an institution export. The payload must be a JSON
// array. Entries need a string id, a string name and a programs array (the
// legacy faculties/departments naming is accepted). Weights that are not
// numbers are parsed from text or left unset. Other entries are discarded
// and counted.
func DecodeInstitutions(payload []byte) ([]model.Institution, int, error) {
	arr, err := decodeArray(payload)
	if err != nil {
		return nil, 0, err
	}
	for i, v := range arr {
		if institutionShape(v) == shapeFaculties {
			arr[i] = renameLegacyLevels(v.(map[string]any))
		}
	}
	institutions, discarded := decodeInstitutions(arr)
	return institutions, discarded, nil
}

// DecodeScoreSets parses a score-set export. Entries need a string id, a
// string name and a scores object; other entries are discarded and counted.
func DecodeScoreSets(payload []byte) ([]model.ScoreSet, int, error) {
	arr, err := decodeArray(payload)
	if err != nil {
		return nil, 0, err
	}
	sets, discarded := decodeScoreSets(arr)
	return sets, discarded, nil
}

func decodeArray(payload []byte) ([]any, error) {
	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	arr, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidPayload)
	}
	return arr, nil
}
