// Package scoring computes weighted totals from raw subject scores.
package scoring

import (
	"github.com/okian/admitcalc/internal/domain/model"
	"github.com/okian/admitcalc/internal/domain/subject"
)

// ComputeTotal returns sum((raw/max)*weight) over the catalog, rounded to two
// decimals. Excluded subjects contribute nothing; unparseable raw input and
// unset weights count as zero.
func ComputeTotal(scores map[string]string, weights model.WeightTable, catalog *subject.Catalog, excluded map[string]struct{}) float64 {
	var total float64
	for _, s := range catalog.All() {
		if _, skip := excluded[s.Key]; skip {
			continue
		}
		total += contribution(model.ParseScore(scores[s.Key]), s.Max, weights.Value(s.Key))
	}
	return model.Round2(total)
}

func contribution(raw, maxScore, weight float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	return raw / maxScore * weight
}
