// internal/models/claim.go
package models

import "time"

// FieldType tags the kind of factual claim being verified. Each field type
// maps to a class of authoritative sources and a comparison rule.
type FieldType string

const (
	FieldAccreditation       FieldType = "accreditation"
	FieldPlacementPercentage FieldType = "placement_percentage"
	FieldAverageSalary       FieldType = "average_salary"
	FieldProgramSeats        FieldType = "program_seats"
	FieldRanking             FieldType = "ranking"
)

// Claim is a single factual assertion extracted from a college or program.
// Claims are ephemeral: built per verification run, never persisted.
type Claim struct {
	SubjectID     string    `json:"subjectId"`
	FieldType     FieldType `json:"fieldType"`
	FieldName     string    `json:"fieldName"`
	AssertedValue string    `json:"assertedValue"`
	SourceRef     string    `json:"sourceRef,omitempty"`
}

type VerificationStatus string

const (
	StatusPending      VerificationStatus = "pending"
	StatusVerified     VerificationStatus = "verified"
	StatusFlagged      VerificationStatus = "flagged"
	StatusUnverifiable VerificationStatus = "unverifiable"
)

// VerificationResult is one terminal outcome per claim per run. Results for
// the same claim are never merged across runs.
type VerificationResult struct {
	Claim         Claim              `json:"claim"`
	Status        VerificationStatus `json:"status"`
	Confidence    float64            `json:"confidence"`
	MatchedSource string             `json:"matchedSource,omitempty"`
	CheckedAt     time.Time          `json:"checkedAt"`
}
