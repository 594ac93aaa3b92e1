// Package store provides read access to the college data store. The
// pipeline treats it as the system of record for full college profiles;
// the candidate index only holds searchable projections of the same data.
package store

import (
	"context"

	"college-recommender/internal/models"
)

// CollegeStore fetches full college records for index candidates. A
// candidate with no backing record is simply absent from the result map;
// callers drop it from the run rather than failing.
type CollegeStore interface {
	GetColleges(ctx context.Context, ids []string) (map[string]*models.College, error)
}
