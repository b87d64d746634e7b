package persistence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/okian/admitcalc/internal/domain/scoreset"
	"github.com/okian/admitcalc/internal/domain/tree"
)

// step converts one older record shape into the next one.
type step struct {
	from  string
	match func(any) bool
	apply func(any) (any, error)
}

// chain is the ordered list of steps for one record.
type chain struct {
	record  Record
	current func(any) bool
	steps   []step
}

// run applies matching steps until data has the current shape. It returns the
// converted data and the names of the applied steps, oldest first.
func (c chain) run(data any) (any, []string, error) {
	var applied []string
	for range len(c.steps) + 1 {
		if c.current(data) {
			return data, applied, nil
		}
		next, from, ok, err := c.advance(data)
		if err != nil {
			return nil, applied, fmt.Errorf("migrate %s from %s: %w", c.record, from, err)
		}
		if !ok {
			break
		}
		data = next
		applied = append(applied, from)
	}
	if c.current(data) {
		return data, applied, nil
	}
	return nil, applied, fmt.Errorf("%w: %s", ErrUnknownShape, c.record)
}

func (c chain) advance(data any) (any, string, bool, error) {
	for _, s := range c.steps {
		if !s.match(data) {
			continue
		}
		next, err := s.apply(data)
		return next, s.from, err == nil, err
	}
	return nil, "", false, nil
}

// Hierarchy entry shapes.
const (
	shapeUnknown = iota
	shapeNested
	shapeFaculties
	shapeFlat
)

func institutionShape(v any) int {
	m, ok := v.(map[string]any)
	if !ok {
		return shapeUnknown
	}
	if _, ok := m["programs"]; ok {
		return shapeNested
	}
	if _, ok := m["faculties"]; ok {
		return shapeFaculties
	}
	if _, ok := m["weights"]; ok {
		return shapeFlat
	}
	return shapeUnknown
}

func anyOfShape(data any, shape int) bool {
	arr, ok := data.([]any)
	if !ok {
		return false
	}
	for _, v := range arr {
		if institutionShape(v) == shape {
			return true
		}
	}
	return false
}

// hierarchyChain upgrades the institution list. Entries of an unknown shape
// are left in place and dropped while decoding.
func hierarchyChain() chain {
	return chain{
		record: RecordHierarchy,
		current: func(data any) bool {
			_, isArray := data.([]any)
			return isArray && !anyOfShape(data, shapeFaculties) && !anyOfShape(data, shapeFlat)
		},
		steps: []step{
			{
				from:  "v2-faculties",
				match: func(data any) bool { return anyOfShape(data, shapeFaculties) },
				apply: mapEntries(shapeFaculties, renameLegacyLevels),
			},
			{
				from:  "v1",
				match: func(data any) bool { return anyOfShape(data, shapeFlat) },
				apply: mapEntries(shapeFlat, wrapFlat),
			},
		},
	}
}

func mapEntries(shape int, fn func(map[string]any) map[string]any) func(any) (any, error) {
	return func(data any) (any, error) {
		arr := data.([]any)
		out := make([]any, len(arr))
		for i, v := range arr {
			if institutionShape(v) == shape {
				out[i] = fn(v.(map[string]any))
				continue
			}
			out[i] = v
		}
		return out, nil
	}
}

// renameLegacyLevels renames faculties/departments to programs/tracks.
func renameLegacyLevels(m map[string]any) map[string]any {
	out := copyObject(m, "faculties")
	faculties, _ := m["faculties"].([]any)
	programs := make([]any, 0, len(faculties))
	for _, f := range faculties {
		fm, ok := f.(map[string]any)
		if !ok {
			programs = append(programs, f)
			continue
		}
		p := copyObject(fm, "departments")
		if d, ok := fm["departments"]; ok {
			p["tracks"] = d
		}
		programs = append(programs, p)
	}
	out["programs"] = programs
	return out
}

// wrapFlat turns a v1 {id,name,weights} entry into an institution with one
// default program holding one default track.
func wrapFlat(m map[string]any) map[string]any {
	id, _ := m["id"].(string)
	out := copyObject(m, "weights")
	out["programs"] = []any{
		map[string]any{
			"id":   id + "_p1",
			"name": tree.DefaultProgramName,
			"tracks": []any{
				map[string]any{
					"id":      id + "_t1",
					"name":    tree.DefaultTrackName,
					"weights": m["weights"],
				},
			},
		},
	}
	return out
}

func copyObject(m map[string]any, skip string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != skip {
			out[k] = v
		}
	}
	return out
}

// scoreSetChain upgrades the score-set list. The v1 record was one flat
// subject → score object; it becomes a single set.
func scoreSetChain(now func() time.Time) chain {
	return chain{
		record: RecordScoreSets,
		current: func(data any) bool {
			_, ok := data.([]any)
			return ok
		},
		steps: []step{{
			from: "v1",
			match: func(data any) bool {
				_, ok := data.(map[string]any)
				return ok
			},
			apply: func(data any) (any, error) {
				ms := float64(now().UnixMilli())
				scores := make(map[string]any)
				for k, v := range data.(map[string]any) {
					if s, ok := scoreText(v); ok {
						scores[k] = s
					}
				}
				return []any{map[string]any{
					"id":        "",
					"name":      scoreset.DefaultName(1),
					"scores":    scores,
					"createdAt": ms,
					"updatedAt": ms,
				}}, nil
			},
		}},
	}
}

// scoreText returns the text form of a stored score. v1 stored numbers.
func scoreText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return "", false
	}
}
