package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
)

// PostgresStore reads college records from PostgreSQL. Child rows
// (programs, placement stats, mentor ratings) are fetched in bulk per
// batch rather than per college.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "college-store"}),
	}
}

func (s *PostgresStore) GetColleges(ctx context.Context, ids []string) (map[string]*models.College, error) {
	if len(ids) == 0 {
		return map[string]*models.College{}, nil
	}

	colleges, err := s.fetchColleges(ctx, ids)
	if err != nil {
		return nil, apperrors.NewStoreQueryFailedError(err)
	}
	if len(colleges) == 0 {
		return colleges, nil
	}

	found := make([]string, 0, len(colleges))
	for id := range colleges {
		found = append(found, id)
	}

	if err := s.fetchPrograms(ctx, found, colleges); err != nil {
		return nil, apperrors.NewStoreQueryFailedError(err)
	}
	if err := s.fetchPlacementStats(ctx, found, colleges); err != nil {
		return nil, apperrors.NewStoreQueryFailedError(err)
	}
	if err := s.fetchMentorRatings(ctx, found, colleges); err != nil {
		return nil, apperrors.NewStoreQueryFailedError(err)
	}

	if len(colleges) < len(ids) {
		s.logger.Warn("some index candidates have no store record", map[string]interface{}{
			"requested": len(ids),
			"found":     len(colleges),
		})
	}

	return colleges, nil
}

func (s *PostgresStore) fetchColleges(ctx context.Context, ids []string) (map[string]*models.College, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, location, district, state,
		       established_year, accreditation, nirf_rank, official_website
		FROM colleges
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colleges := make(map[string]*models.College)
	for rows.Next() {
		var c models.College
		var district, state, website sql.NullString
		var establishedYear, nirfRank sql.NullInt64
		var accreditation pq.StringArray

		err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Location, &district, &state,
			&establishedYear, &accreditation, &nirfRank, &website,
		)
		if err != nil {
			return nil, err
		}

		c.District = district.String
		c.State = state.String
		c.EstablishedYear = int(establishedYear.Int64)
		c.Accreditation = []string(accreditation)
		c.NIRFRank = int(nirfRank.Int64)
		c.OfficialWebsite = website.String

		colleges[c.ID] = &c
	}
	return colleges, rows.Err()
}

func (s *PostgresStore) fetchPrograms(ctx context.Context, ids []string, colleges map[string]*models.College) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT college_id, name, stream, duration_years, annual_fee,
		       total_seats, eligibility, entrance_exam
		FROM programs
		WHERE college_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var collegeID string
		var p models.Program
		var eligibility, entranceExam sql.NullString

		err := rows.Scan(
			&collegeID, &p.Name, &p.Stream, &p.DurationYears, &p.AnnualFee,
			&p.TotalSeats, &eligibility, &entranceExam,
		)
		if err != nil {
			return err
		}

		p.Eligibility = eligibility.String
		p.EntranceExam = entranceExam.String

		if c, ok := colleges[collegeID]; ok {
			c.Programs = append(c.Programs, p)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) fetchPlacementStats(ctx context.Context, ids []string, colleges map[string]*models.College) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT college_id, year, placement_percentage, average_salary,
		       highest_salary, top_recruiters
		FROM placement_stats
		WHERE college_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var collegeID string
		var ps models.PlacementStat
		var highestSalary sql.NullFloat64
		var topRecruiters pq.StringArray

		err := rows.Scan(
			&collegeID, &ps.Year, &ps.PlacementPercentage, &ps.AverageSalary,
			&highestSalary, &topRecruiters,
		)
		if err != nil {
			return err
		}

		ps.HighestSalary = highestSalary.Float64
		ps.TopRecruiters = []string(topRecruiters)

		if c, ok := colleges[collegeID]; ok {
			c.PlacementStats = append(c.PlacementStats, ps)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) fetchMentorRatings(ctx context.Context, ids []string, colleges map[string]*models.College) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT college_id, rating, review_text, verified
		FROM mentor_ratings
		WHERE college_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var collegeID string
		var mr models.MentorRating
		var reviewText sql.NullString

		err := rows.Scan(&collegeID, &mr.Rating, &reviewText, &mr.Verified)
		if err != nil {
			return err
		}

		mr.ReviewText = reviewText.String

		if c, ok := colleges[collegeID]; ok {
			c.MentorRatings = append(c.MentorRatings, mr)
		}
	}
	return rows.Err()
}
