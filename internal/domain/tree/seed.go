package tree

import (
	"github.com/okian/admitcalc/internal/domain/ids"
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// Builtin institution ids.
const (
	UniformID = "default"
	ExampleID = "osaka"
)

// Names of the single program and track inside a builtin or migrated institution.
const (
	DefaultProgramName = "Default program"
	DefaultTrackName   = "Default track"
)

// exampleWeights is the weight profile of the example institution; subjects
// not listed weigh zero.
var exampleWeights = map[string]float64{
	"social1":  10,
	"japanese": 40,
	"engR":     37.5,
	"engL":     12.5,
}

// Seed returns a tree holding only the builtin institutions.
func Seed(catalog *subject.Catalog, gen ids.Generator) Tree {
	return New(catalog, gen, Builtins(catalog))
}

// Builtins returns the builtin institutions for catalog: a uniform baseline
// weighting every subject 10, and an example with an uneven profile.
func Builtins(catalog *subject.Catalog) []model.Institution {
	uniform := catalog.ZeroWeights()
	for k := range uniform {
		uniform[k] = model.Weight(10)
	}
	example := catalog.ZeroWeights()
	for k, v := range exampleWeights {
		if catalog.Has(k) {
			example[k] = model.Weight(v)
		}
	}
	return []model.Institution{
		builtin(UniformID, "Uniform baseline", uniform),
		builtin(ExampleID, "Example institution", example),
	}
}

func builtin(id, name string, weights model.WeightTable) model.Institution {
	return model.Institution{
		ID:      id,
		Name:    name,
		Builtin: true,
		Programs: []model.Program{{
			ID:   id + "_p1",
			Name: DefaultProgramName,
			Tracks: []model.Track{{
				ID:      id + "_t1",
				Name:    DefaultTrackName,
				Weights: weights,
			}},
		}},
	}
}

// IsBuiltinID reports whether id names a builtin institution.
func IsBuiltinID(id string) bool {
	return id == UniformID || id == ExampleID
}
