package scoring

import (
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// Category groups subjects for a subtotal line.
type Category struct {
	Name string   `json:"name" yaml:"name"`
	Keys []string `json:"keys" yaml:"keys"`
}

// DefaultCategories returns the subtotals shown next to a result.
func DefaultCategories() []Category {
	return []Category{
		{Name: "humanities", Keys: []string{"social1", "social2", "japanese"}},
		{Name: "science", Keys: []string{"sci1", "sci2", "math1", "math2"}},
		{Name: "language", Keys: []string{"engR", "engL"}},
		{Name: "core", Keys: []string{"engR", "engL", "japanese", "math1", "math2"}},
	}
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithCategories replaces the subtotal categories. Keys missing from the
// catalog are ignored at computation time.
func WithCategories(categories []Category) Option {
	return func(a *Aggregator) {
		if categories != nil {
			a.categories = categories
		}
	}
}

// SubjectResult is one line of a Breakdown.
type SubjectResult struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Raw        float64  `json:"raw"`
	Max        float64  `json:"max"`
	Percentage float64  `json:"percentage"`
	Weight     *float64 `json:"weight"`
	Weighted   float64  `json:"weighted"`
	Excluded   bool     `json:"excluded"`
}

// CategoryTotal is the raw and weighted subtotal of a category.
type CategoryTotal struct {
	Name       string  `json:"name"`
	Raw        float64 `json:"raw"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
	Weighted   float64 `json:"weighted"`
}

// Breakdown is a full per-subject explanation of a total.
type Breakdown struct {
	Subjects      []SubjectResult `json:"subjects"`
	Categories    []CategoryTotal `json:"categories"`
	RawTotal      float64         `json:"rawTotal"`
	MaxPossible   float64         `json:"maxPossible"`
	Percentage    float64         `json:"percentage"`
	WeightedTotal float64         `json:"weightedTotal"`
	WeightSum     float64         `json:"weightSum"`
}

// Aggregator computes totals and breakdowns against a fixed catalog.
type Aggregator struct {
	catalog    *subject.Catalog
	categories []Category
}

// NewAggregator creates an aggregator with configuration options.
func NewAggregator(catalog *subject.Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		catalog:    catalog,
		categories: DefaultCategories(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Total is ComputeTotal bound to the aggregator's catalog.
func (a *Aggregator) Total(scores map[string]string, weights model.WeightTable, excluded map[string]struct{}) float64 {
	return ComputeTotal(scores, weights, a.catalog, excluded)
}

// Breakdown explains a total subject by subject. Excluded subjects report
// zero raw score and weight, and their max leaves every denominator.
func (a *Aggregator) Breakdown(scores map[string]string, weights model.WeightTable, excluded map[string]struct{}) Breakdown {
	b := Breakdown{
		Subjects:      make([]SubjectResult, 0, a.catalog.Len()),
		WeightedTotal: a.Total(scores, weights, excluded),
	}
	raws := make(map[string]float64, a.catalog.Len())
	weighted := make(map[string]float64, a.catalog.Len())
	var weightSum float64
	for _, s := range a.catalog.All() {
		line := SubjectResult{Key: s.Key, Label: s.Label, Max: s.Max}
		if _, skip := excluded[s.Key]; skip {
			line.Excluded = true
			b.Subjects = append(b.Subjects, line)
			continue
		}
		raw := model.ParseScore(scores[s.Key])
		w := weights.Value(s.Key)
		raws[s.Key] = raw
		line.Raw = raw
		line.Percentage = percentage(raw, s.Max)
		if v, ok := weights[s.Key]; ok && v != nil {
			line.Weight = model.Weight(*v)
		}
		weighted[s.Key] = contribution(raw, s.Max, w)
		line.Weighted = model.Round2(weighted[s.Key])
		b.Subjects = append(b.Subjects, line)

		b.RawTotal += raw
		b.MaxPossible += s.Max
		weightSum += w
	}
	b.RawTotal = model.Round2(b.RawTotal)
	b.Percentage = percentage(b.RawTotal, b.MaxPossible)
	b.WeightSum = model.Round2(weightSum)

	for _, c := range a.categories {
		ct := CategoryTotal{Name: c.Name}
		for _, key := range c.Keys {
			raw, ok := raws[key]
			if !ok {
				continue
			}
			s, _ := a.catalog.Get(key)
			ct.Raw += raw
			ct.Max += s.Max
			ct.Weighted += weighted[key]
		}
		ct.Raw = model.Round2(ct.Raw)
		ct.Weighted = model.Round2(ct.Weighted)
		ct.Percentage = percentage(ct.Raw, ct.Max)
		b.Categories = append(b.Categories, ct)
	}
	return b
}

func percentage(raw, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return model.Round2(raw / maxScore * 100)
}
