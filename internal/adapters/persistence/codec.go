package persistence

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/admitcalc/internal/domain/model"
)

// The decoders below read the generic JSON produced by the migration chain.
// An entry that does not have the expected field types is skipped.

func decodeInstitutions(arr []any) ([]model.Institution, int) {
	out := make([]model.Institution, 0, len(arr))
	skipped := 0
	for _, v := range arr {
		inst, ok := institutionFrom(v)
		if !ok {
			skipped++
			continue
		}
		out = append(out, inst)
	}
	return out, skipped
}

func institutionFrom(v any) (model.Institution, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.Institution{}, false
	}
	id, idOK := m["id"].(string)
	name, nameOK := m["name"].(string)
	programs, progOK := m["programs"].([]any)
	if !idOK || !nameOK || !progOK {
		return model.Institution{}, false
	}
	builtin, _ := m["builtin"].(bool)
	inst := model.Institution{
		ID:       id,
		Name:     name,
		Builtin:  builtin,
		Programs: make([]model.Program, 0, len(programs)),
	}
	for _, pv := range programs {
		p, ok := programFrom(pv)
		if !ok {
			return model.Institution{}, false
		}
		inst.Programs = append(inst.Programs, p)
	}
	return inst, true
}

func programFrom(v any) (model.Program, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.Program{}, false
	}
	id, idOK := m["id"].(string)
	name, nameOK := m["name"].(string)
	if !idOK || !nameOK {
		return model.Program{}, false
	}
	p := model.Program{ID: id, Name: name, Tracks: []model.Track{}}
	raw, present := m["tracks"]
	if !present || raw == nil {
		return p, true
	}
	tracks, ok := raw.([]any)
	if !ok {
		return model.Program{}, false
	}
	for _, tv := range tracks {
		t, ok := trackFrom(tv)
		if !ok {
			return model.Program{}, false
		}
		p.Tracks = append(p.Tracks, t)
	}
	return p, true
}

func trackFrom(v any) (model.Track, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.Track{}, false
	}
	id, idOK := m["id"].(string)
	name, nameOK := m["name"].(string)
	if !idOK || !nameOK {
		return model.Track{}, false
	}
	return model.Track{ID: id, Name: name, Weights: weightsFrom(m["weights"])}, true
}

// weightsFrom reads a weight table. Text weights are parsed like user input;
// anything else that is not a finite number is stored unset. A missing or
// non-object table stays nil.
func weightsFrom(v any) model.WeightTable {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(model.WeightTable, len(m))
	for k, w := range m {
		switch x := w.(type) {
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) {
				out[k] = nil
				continue
			}
			out[k] = model.Weight(x)
		case string:
			out[k] = model.ParseWeight(x)
		default:
			out[k] = nil
		}
	}
	return out
}

func decodeScoreSets(arr []any) ([]model.ScoreSet, int) {
	out := make([]model.ScoreSet, 0, len(arr))
	skipped := 0
	for _, v := range arr {
		set, ok := scoreSetFrom(v)
		if !ok {
			skipped++
			continue
		}
		out = append(out, set)
	}
	return out, skipped
}

func scoreSetFrom(v any) (model.ScoreSet, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.ScoreSet{}, false
	}
	id, idOK := m["id"].(string)
	name, nameOK := m["name"].(string)
	scores, scoresOK := m["scores"].(map[string]any)
	if !idOK || !nameOK || !scoresOK {
		return model.ScoreSet{}, false
	}
	set := model.ScoreSet{
		ID:     id,
		Name:   name,
		Scores: make(map[string]string, len(scores)),
	}
	for k, s := range scores {
		if text, ok := scoreText(s); ok {
			set.Scores[k] = text
		}
	}
	if ms, ok := m["createdAt"].(float64); ok {
		set.CreatedAt = int64(ms)
	}
	if ms, ok := m["updatedAt"].(float64); ok {
		set.UpdatedAt = int64(ms)
	}
	return set, true
}

func decodeJSON(raw []byte) (any, error) {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrMalformedPersistedState, err)
	}
	return data, nil
}

// EncodeInstitutions returns the JSON wire form of institutions.
func EncodeInstitutions(institutions []model.Institution) ([]byte, error) {
	if institutions == nil {
		institutions = []model.Institution{}
	}
	return json.Marshal(institutions)
}

// EncodeScoreSets returns the JSON wire form of score sets.
func EncodeScoreSets(sets []model.ScoreSet) ([]byte, error) {
	if sets == nil {
		sets = []model.ScoreSet{}
	}
	return json.Marshal(sets)
}
