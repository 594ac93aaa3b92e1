// internal/pipeline/verify-claims/compare.go
package verifyclaims

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"college-recommender/internal/models"
)

// comparison is the outcome of checking one asserted value against one
// source value. Severity is a [0,1] deviation measure used for flagged
// confidence; zero when the values match.
type comparison struct {
	match    bool
	severity float64
}

type comparator func(asserted string, sourceValue interface{}, cfg *Config) (comparison, error)

// comparators dispatches on claim field type. Every supported field type
// has an entry; an unlisted type cannot be verified at all.
var comparators = map[models.FieldType]comparator{
	models.FieldAccreditation:       compareAccreditation,
	models.FieldPlacementPercentage: comparePercentage,
	models.FieldAverageSalary:       compareSalary,
	models.FieldProgramSeats:        compareSeats,
	models.FieldRanking:             compareRanking,
}

func comparePercentage(asserted string, sourceValue interface{}, cfg *Config) (comparison, error) {
	a, s, err := parsePair(asserted, sourceValue)
	if err != nil {
		return comparison{}, err
	}
	diff := math.Abs(a - s)
	return comparison{
		match:    diff <= cfg.PercentageTolerance,
		severity: clamp01(diff / 100),
	}, nil
}

func compareSalary(asserted string, sourceValue interface{}, cfg *Config) (comparison, error) {
	a, s, err := parsePair(asserted, sourceValue)
	if err != nil {
		return comparison{}, err
	}
	diff := math.Abs(a - s)
	return comparison{
		match:    diff <= cfg.SalaryTolerance*math.Abs(s),
		severity: clamp01(diff / math.Max(math.Abs(s), 1)),
	}, nil
}

func compareSeats(asserted string, sourceValue interface{}, cfg *Config) (comparison, error) {
	a, s, err := parsePair(asserted, sourceValue)
	if err != nil {
		return comparison{}, err
	}
	diff := math.Abs(a - s)
	return comparison{
		match:    diff <= cfg.SeatsTolerance,
		severity: clamp01(diff / math.Max(math.Abs(s), 1)),
	}, nil
}

func compareRanking(asserted string, sourceValue interface{}, _ *Config) (comparison, error) {
	a, s, err := parsePair(asserted, sourceValue)
	if err != nil {
		return comparison{}, err
	}
	diff := math.Abs(a - s)
	return comparison{
		match:    diff == 0,
		severity: clamp01(diff / math.Max(math.Abs(s), 1)),
	}, nil
}

// compareAccreditation checks set containment: every asserted accreditation
// must appear in the source's list. Severity is the missing fraction.
func compareAccreditation(asserted string, sourceValue interface{}, _ *Config) (comparison, error) {
	assertedItems := splitSet(asserted)
	if len(assertedItems) == 0 {
		return comparison{match: true}, nil
	}

	sourceItems, err := toStringSet(sourceValue)
	if err != nil {
		return comparison{}, err
	}

	missing := 0
	for item := range assertedItems {
		if !sourceItems[item] {
			missing++
		}
	}

	return comparison{
		match:    missing == 0,
		severity: float64(missing) / float64(len(assertedItems)),
	}, nil
}

func parsePair(asserted string, sourceValue interface{}) (float64, float64, error) {
	a, err := strconv.ParseFloat(strings.TrimSpace(asserted), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("asserted value %q is not numeric", asserted)
	}
	s, ok := toFloat(sourceValue)
	if !ok {
		return 0, 0, fmt.Errorf("source value %v is not numeric", sourceValue)
	}
	return a, s, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toStringSet(v interface{}) (map[string]bool, error) {
	switch items := v.(type) {
	case []interface{}:
		set := make(map[string]bool, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("source list contains non-string entry %v", item)
			}
			set[normalize(s)] = true
		}
		return set, nil
	case []string:
		set := make(map[string]bool, len(items))
		for _, s := range items {
			set[normalize(s)] = true
		}
		return set, nil
	case string:
		return splitSet(items), nil
	}
	return nil, fmt.Errorf("source value %v is not a list", v)
}

func splitSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		if trimmed := normalize(part); trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
