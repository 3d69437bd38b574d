package normalize

import (
	"fmt"
	"sort"
	"strconv"

	"medirouter/datasets"
	"medirouter/models"
)

// Result carries the normalized metrics plus warnings for the records
// that could not contribute. Partial data never aborts a comparison.
type Result struct {
	Metrics  []models.ComparisonMetric
	Warnings []string
}

// Normalize maps raw gateway records into comparison metrics per the
// given spec. Pure and deterministic: output is sorted by hospital id
// and identical input always yields identical output. Records missing
// the source field, or carrying an unparsable value, are skipped with
// a warning.
func Normalize(records []datasets.Record, spec models.MetricSpec) Result {
	var res Result
	scale := spec.Scale
	if scale == 0 {
		scale = 1
	}

	for _, rec := range records {
		hospitalID := rec["hospital_id"]
		if hospitalID == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("metric %s: record missing hospital_id", spec.Metric))
			continue
		}
		raw, ok := rec[spec.SourceField]
		if !ok || raw == "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("metric %s: hospital %s missing field %q", spec.Metric, hospitalID, spec.SourceField))
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("metric %s: hospital %s unparsable value %q", spec.Metric, hospitalID, raw))
			continue
		}
		res.Metrics = append(res.Metrics, models.ComparisonMetric{
			HospitalID: hospitalID,
			Metric:     spec.Metric,
			Value:      value * scale,
			Unit:       spec.Unit,
		})
	}

	sort.Slice(res.Metrics, func(i, j int) bool {
		if res.Metrics[i].HospitalID != res.Metrics[j].HospitalID {
			return res.Metrics[i].HospitalID < res.Metrics[j].HospitalID
		}
		return res.Metrics[i].Metric < res.Metrics[j].Metric
	})
	return res
}

// DropDangling removes metrics referencing a hospital id absent from
// the directory. Dangling references are dropped, not propagated.
func DropDangling(metrics []models.ComparisonMetric, directory []models.HospitalRecord) []models.ComparisonMetric {
	known := make(map[string]struct{}, len(directory))
	for _, h := range directory {
		known[h.ID] = struct{}{}
	}
	out := make([]models.ComparisonMetric, 0, len(metrics))
	for _, m := range metrics {
		if _, ok := known[m.HospitalID]; ok {
			out = append(out, m)
		}
	}
	return out
}
