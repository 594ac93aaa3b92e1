// internal/pipeline/retrieve-candidates/models.go
package retrievecandidates

import (
	"college-recommender/internal/models"
)

type Input struct {
	Profile *models.StudentProfile `json:"profile"`
	K       int                    `json:"k"`
}

// Candidate pairs an index hit with its full store record. Candidates
// whose store record is missing never appear here.
type Candidate struct {
	CollegeID  string          `json:"collegeId"`
	Similarity float64         `json:"similarity"`
	College    *models.College `json:"college"`
}

type Output struct {
	Candidates []Candidate `json:"candidates"`
	Dropped    int         `json:"dropped"`
}
