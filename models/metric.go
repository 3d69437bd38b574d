package models

// ComparisonMetric is a normalized, comparable value derived from a raw
// dataset field. Ephemeral; recomputed per query, never persisted.
type ComparisonMetric struct {
	HospitalID string  `json:"hospital_id"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
}

// MetricSpec tells the normalizer which raw field to extract and how to
// scale it into a common unit.
type MetricSpec struct {
	Metric      string  `json:"metric"`       // output metric name, e.g. "price"
	SourceField string  `json:"source_field"` // raw record field to read
	Scale       float64 `json:"scale"`        // multiplier applied to the parsed value
	Unit        string  `json:"unit"`         // unit of the normalized value
}

// Criteria is a weighted-metric configuration for a comparison query.
// Negative weights penalize high values (e.g. price), positive weights
// reward them (e.g. capacity).
type Criteria struct {
	Weights   map[string]float64 `json:"weights"`
	Specialty string             `json:"specialty,omitempty"`
	State     string             `json:"state,omitempty"`
	Limit     int                `json:"limit,omitempty"`
}

// RankedHospital is one row of a comparison result.
type RankedHospital struct {
	HospitalID string  `json:"hospital_id"`
	Name       string  `json:"name,omitempty"`
	Score      float64 `json:"score"`
}
