// internal/models/student.go
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Stream is an academic stream a student can apply for.
type Stream string

const (
	StreamEngineering Stream = "engineering"
	StreamScience     Stream = "science"
	StreamCommerce    Stream = "commerce"
	StreamArts        Stream = "arts"
	StreamMedical     Stream = "medical"
)

// ValidStream reports whether s is one of the known streams.
func ValidStream(s Stream) bool {
	switch s {
	case StreamEngineering, StreamScience, StreamCommerce, StreamArts, StreamMedical:
		return true
	}
	return false
}

type BudgetRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// StudentProfile is immutable once a request is created. Any change to a
// profile field produces a new fingerprint, which is what invalidates the
// session score cache.
type StudentProfile struct {
	Age              int         `json:"age"`
	Board            string      `json:"board"`
	MarksPercentage  float64     `json:"marksPercentage"`
	PreferredStreams []Stream    `json:"preferredStreams"`
	Budget           BudgetRange `json:"budget"`
	Location         string      `json:"location"`
}

// Validate checks the required-input constraints. Violations surface to the
// caller as a rejected request; nothing here is auto-corrected.
func (p *StudentProfile) Validate() error {
	if p.MarksPercentage < 0 || p.MarksPercentage > 100 {
		return fmt.Errorf("marks percentage %.2f out of range [0,100]", p.MarksPercentage)
	}
	if p.Budget.Min < 0 || p.Budget.Max < 0 {
		return fmt.Errorf("budget range (%d, %d) must be non-negative", p.Budget.Min, p.Budget.Max)
	}
	if p.Budget.Min > p.Budget.Max {
		return fmt.Errorf("budget range inverted: min %d > max %d", p.Budget.Min, p.Budget.Max)
	}
	if len(p.PreferredStreams) == 0 {
		return fmt.Errorf("at least one preferred stream is required")
	}
	for _, s := range p.PreferredStreams {
		if !ValidStream(s) {
			return fmt.Errorf("unknown stream %q", s)
		}
	}
	return nil
}

// Fingerprint returns a stable digest of every profile field. Stream order
// does not matter; location matching is case-insensitive, so the fingerprint
// folds case too.
func (p *StudentProfile) Fingerprint() string {
	streams := make([]string, len(p.PreferredStreams))
	for i, s := range p.PreferredStreams {
		streams[i] = string(s)
	}
	sort.Strings(streams)

	canonical := fmt.Sprintf("%d|%s|%.4f|%s|%d|%d|%s",
		p.Age,
		strings.ToLower(p.Board),
		p.MarksPercentage,
		strings.Join(streams, ","),
		p.Budget.Min,
		p.Budget.Max,
		strings.ToLower(p.Location),
	)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// HasStream reports whether the profile lists the given stream.
func (p *StudentProfile) HasStream(s Stream) bool {
	for _, ps := range p.PreferredStreams {
		if ps == s {
			return true
		}
	}
	return false
}

// InBudget reports whether an annual fee falls inside the budget range.
func (p *StudentProfile) InBudget(fee int) bool {
	return fee >= p.Budget.Min && fee <= p.Budget.Max
}
