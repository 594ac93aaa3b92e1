// internal/pipeline/verify-claims/extractor.go
package verifyclaims

import (
	"strconv"
	"strings"

	"college-recommender/internal/models"
)

// ExtractClaims builds the verifiable factual assertions for one candidate.
// Claims are ephemeral: rebuilt on every run, never persisted. Only fields
// the college actually reports produce claims; absence is not a claim.
func ExtractClaims(college *models.College, profile *models.StudentProfile, maxSeatClaims int) []models.Claim {
	var claims []models.Claim

	if len(college.Accreditation) > 0 {
		claims = append(claims, models.Claim{
			SubjectID:     college.ID,
			FieldType:     models.FieldAccreditation,
			FieldName:     "accreditation",
			AssertedValue: strings.Join(college.Accreditation, ","),
			SourceRef:     college.OfficialWebsite,
		})
	}

	if latest := college.LatestPlacement(); latest != nil {
		claims = append(claims, models.Claim{
			SubjectID:     college.ID,
			FieldType:     models.FieldPlacementPercentage,
			FieldName:     "placement_percentage:" + strconv.Itoa(latest.Year),
			AssertedValue: formatFloat(latest.PlacementPercentage),
		})
		if latest.AverageSalary > 0 {
			claims = append(claims, models.Claim{
				SubjectID:     college.ID,
				FieldType:     models.FieldAverageSalary,
				FieldName:     "average_salary:" + strconv.Itoa(latest.Year),
				AssertedValue: formatFloat(latest.AverageSalary),
			})
		}
	}

	seatClaims := 0
	for _, program := range college.Programs {
		if seatClaims >= maxSeatClaims {
			break
		}
		if profile != nil && !profile.HasStream(program.Stream) {
			continue
		}
		if program.TotalSeats <= 0 {
			continue
		}
		claims = append(claims, models.Claim{
			SubjectID:     college.ID,
			FieldType:     models.FieldProgramSeats,
			FieldName:     "program_seats:" + program.Name,
			AssertedValue: strconv.Itoa(program.TotalSeats),
		})
		seatClaims++
	}

	if college.NIRFRank > 0 {
		claims = append(claims, models.Claim{
			SubjectID:     college.ID,
			FieldType:     models.FieldRanking,
			FieldName:     "nirf_rank",
			AssertedValue: strconv.Itoa(college.NIRFRank),
		})
	}

	return claims
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
