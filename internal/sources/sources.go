// Package sources implements clients for the authoritative sources used
// during claim verification (ranking bodies, accreditation councils,
// placement records). Each client answers point queries for one field of
// one college; absence of a record is a normal answer, not an error.
package sources

import (
	"context"
	"time"

	"college-recommender/internal/models"
)

// Record is one authoritative answer for a (field type, college) query.
type Record struct {
	Source      string           `json:"source"`
	CollegeID   string           `json:"collegeId"`
	FieldType   models.FieldType `json:"fieldType"`
	Value       interface{}      `json:"value"`
	Reliability float64          `json:"reliability"`
	RetrievedAt time.Time        `json:"retrievedAt"`
}

// Client queries one authoritative source. Query returns (nil, nil) when
// the source is reachable but carries no record for the subject; an error
// means the source did not respond usefully for this query.
type Client interface {
	Name() string
	Reliability() float64
	Covers(ft models.FieldType) bool
	Query(ctx context.Context, ft models.FieldType, collegeID string) (*Record, error)
}
