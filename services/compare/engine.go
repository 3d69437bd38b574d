package compare

import (
	"math"
	"sort"

	"medirouter/models"
)

// Engine ranks hospitals against weighted criteria. It holds no shared
// mutable state and is safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Compare scores each hospital appearing in metrics against the
// criteria weights and returns the ranking, best first.
//
// A hospital's score is the weighted sum over the metrics it actually
// has, divided by the total absolute weight of that same subset. A
// hospital missing a metric simply loses that term from both numerator
// and denominator, so sparse data shrinks the basis instead of
// dragging the score to zero. Ties break by hospital id ascending.
func (e *Engine) Compare(criteria models.Criteria, metrics []models.ComparisonMetric) ([]models.RankedHospital, error) {
	if len(metrics) == 0 {
		return nil, NewNoCandidates("no metrics matched the requested criteria")
	}
	if len(criteria.Weights) == 0 {
		return nil, NewNoCandidates("no metric weights supplied")
	}

	type accum struct {
		weighted    float64
		totalWeight float64
	}
	scores := make(map[string]*accum)

	for _, m := range metrics {
		weight, ok := criteria.Weights[m.Metric]
		if !ok {
			continue
		}
		acc := scores[m.HospitalID]
		if acc == nil {
			acc = &accum{}
			scores[m.HospitalID] = acc
		}
		acc.weighted += weight * m.Value
		acc.totalWeight += math.Abs(weight)
	}

	if len(scores) == 0 {
		return nil, NewNoCandidates("no hospital carries any weighted metric")
	}

	ranked := make([]models.RankedHospital, 0, len(scores))
	for hospitalID, acc := range scores {
		if acc.totalWeight == 0 {
			continue
		}
		ranked = append(ranked, models.RankedHospital{
			HospitalID: hospitalID,
			Score:      acc.weighted / acc.totalWeight,
		})
	}
	if len(ranked) == 0 {
		return nil, NewNoCandidates("all candidate hospitals were filtered out")
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].HospitalID < ranked[j].HospitalID
	})

	if criteria.Limit > 0 && len(ranked) > criteria.Limit {
		ranked = ranked[:criteria.Limit]
	}
	return ranked, nil
}
