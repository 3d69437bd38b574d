package datasets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"medirouter/utils"

	"go.uber.org/zap"
)

// CSVStore is a Gateway over the CSV dataset files. Each kind is loaded
// independently; a failed load is remembered and surfaced per-fetch so
// the remaining datasets keep serving.
type CSVStore struct {
	dir    string
	mu     sync.RWMutex
	tables map[DatasetKind][]Record
	failed map[DatasetKind]error
}

// NewCSVStore creates a store over the given data directory and loads
// every known dataset. Load failures do not abort construction.
func NewCSVStore(dir string) *CSVStore {
	s := &CSVStore{
		dir:    dir,
		tables: make(map[DatasetKind][]Record),
		failed: make(map[DatasetKind]error),
	}
	s.LoadAll()
	return s
}

// LoadAll (re)loads every dataset kind, independently.
func (s *CSVStore) LoadAll() {
	logger := utils.GetLogger()
	for kind := range fileNames {
		if err := s.load(kind); err != nil {
			logger.Warn("dataset load failed, queries against it will degrade",
				zap.String("kind", string(kind)), zap.Error(err))
		}
	}
}

func (s *CSVStore) load(kind DatasetKind) error {
	path := filepath.Join(s.dir, fileNames[kind])
	records, err := readCSV(kind, path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed[kind] = err
		delete(s.tables, kind)
		return err
	}
	s.tables[kind] = records
	delete(s.failed, kind)
	return nil
}

func readCSV(kind DatasetKind, path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDatasetUnavailable(kind, err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, NewDatasetUnavailable(kind, fmt.Sprintf("unreadable header: %v", err))
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range requiredColumns[kind] {
		if _, ok := cols[required]; !ok {
			return nil, NewSchemaMismatch(kind, fmt.Sprintf("missing column %q", required))
		}
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, NewSchemaMismatch(kind, fmt.Sprintf("line %d: %v", line, err))
		}
		if len(row) != len(header) {
			return nil, NewSchemaMismatch(kind, fmt.Sprintf("line %d: expected %d fields, got %d", line, len(header), len(row)))
		}
		rec := make(Record, len(header))
		for i, name := range header {
			rec[name] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

// Fetch returns the records of a dataset kind matching the predicate.
// Read-only; the returned slice is a fresh copy.
func (s *CSVStore) Fetch(kind DatasetKind, filter Predicate) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, down := s.failed[kind]; down {
		return nil, err
	}
	table, ok := s.tables[kind]
	if !ok {
		return nil, NewDatasetUnavailable(kind, "unknown dataset kind")
	}

	out := make([]Record, 0, len(table))
	for _, rec := range table {
		if filter == nil || filter(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Kinds lists the dataset kinds currently loaded and serving.
func (s *CSVStore) Kinds() []DatasetKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kinds := make([]DatasetKind, 0, len(s.tables))
	for kind := range s.tables {
		kinds = append(kinds, kind)
	}
	return kinds
}

// ByField builds a predicate matching records whose field equals value
// (case-insensitive).
func ByField(field, value string) Predicate {
	return func(rec Record) bool {
		return strings.EqualFold(rec[field], value)
	}
}
