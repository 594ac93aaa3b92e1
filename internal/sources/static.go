package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"college-recommender/internal/models"
)

// StaticClient serves source records from a JSON data file. It backs
// development and test environments where the real ranking and
// accreditation endpoints are not reachable.
type StaticClient struct {
	name        string
	reliability float64
	fields      map[models.FieldType]bool
	records     map[string]map[string]interface{}
}

type staticDataFile struct {
	Source  string `json:"source"`
	Records []struct {
		CollegeID string                 `json:"collegeId"`
		Fields    map[string]interface{} `json:"fields"`
	} `json:"records"`
}

// NewStaticClient loads a data file of per-college field values.
func NewStaticClient(name string, reliability float64, fieldTypes []models.FieldType, dataPath string) (*StaticClient, error) {
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source data file: %w", err)
	}

	var data staticDataFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse source data file %s: %w", dataPath, err)
	}

	fields := make(map[models.FieldType]bool, len(fieldTypes))
	for _, ft := range fieldTypes {
		fields[ft] = true
	}

	records := make(map[string]map[string]interface{}, len(data.Records))
	for _, r := range data.Records {
		records[r.CollegeID] = r.Fields
	}

	return &StaticClient{
		name:        name,
		reliability: reliability,
		fields:      fields,
		records:     records,
	}, nil
}

// NewStaticClientFromRecords builds a client directly from in-memory
// records, bypassing the data file. Used by tests.
func NewStaticClientFromRecords(name string, reliability float64, fieldTypes []models.FieldType, records map[string]map[string]interface{}) *StaticClient {
	fields := make(map[models.FieldType]bool, len(fieldTypes))
	for _, ft := range fieldTypes {
		fields[ft] = true
	}
	return &StaticClient{
		name:        name,
		reliability: reliability,
		fields:      fields,
		records:     records,
	}
}

func (s *StaticClient) Name() string { return s.name }

func (s *StaticClient) Reliability() float64 { return s.reliability }

func (s *StaticClient) Covers(ft models.FieldType) bool { return s.fields[ft] }

func (s *StaticClient) Query(_ context.Context, ft models.FieldType, collegeID string) (*Record, error) {
	if !s.fields[ft] {
		return nil, nil
	}

	fields, ok := s.records[collegeID]
	if !ok {
		return nil, nil
	}
	value, ok := fields[string(ft)]
	if !ok {
		return nil, nil
	}

	return &Record{
		Source:      s.name,
		CollegeID:   collegeID,
		FieldType:   ft,
		Value:       value,
		Reliability: s.reliability,
		RetrievedAt: time.Now().UTC(),
	}, nil
}
