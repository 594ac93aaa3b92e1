package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, logger.NewTestLogger(t)), mock
}

func expectCollegeRows(mock sqlmock.Sqlmock, ids ...string) {
	rows := sqlmock.NewRows([]string{
		"id", "name", "type", "location", "district", "state",
		"established_year", "accreditation", "nirf_rank", "official_website",
	})
	for _, id := range ids {
		rows.AddRow(id, "College "+id, "government", "Delhi", "New Delhi", "Delhi",
			1961, `{NAAC A++,NBA}`, 2, "https://example.ac.in")
	}
	mock.ExpectQuery("SELECT id, name, type, location").WillReturnRows(rows)
}

func expectEmptyChildren(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM programs").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "name", "stream", "duration_years", "annual_fee",
		"total_seats", "eligibility", "entrance_exam",
	}))
	mock.ExpectQuery("FROM placement_stats").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "year", "placement_percentage", "average_salary",
		"highest_salary", "top_recruiters",
	}))
	mock.ExpectQuery("FROM mentor_ratings").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "rating", "review_text", "verified",
	}))
}

func TestGetColleges_FullRecord(t *testing.T) {
	store, mock := newMockStore(t)

	expectCollegeRows(mock, "c-001")
	mock.ExpectQuery("FROM programs").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "name", "stream", "duration_years", "annual_fee",
		"total_seats", "eligibility", "entrance_exam",
	}).AddRow("c-001", "B.Tech CSE", "engineering", 4, 150000, 120, "10+2 PCM", "JEE Advanced"))
	mock.ExpectQuery("FROM placement_stats").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "year", "placement_percentage", "average_salary",
		"highest_salary", "top_recruiters",
	}).AddRow("c-001", 2024, 92.5, 1800000.0, 4500000.0, `{Google,Microsoft}`))
	mock.ExpectQuery("FROM mentor_ratings").WillReturnRows(sqlmock.NewRows([]string{
		"college_id", "rating", "review_text", "verified",
	}).AddRow("c-001", 4.5, "strong placement support", true))

	colleges, err := store.GetColleges(context.Background(), []string{"c-001"})
	require.NoError(t, err)
	require.Len(t, colleges, 1)

	c := colleges["c-001"]
	require.NotNil(t, c)
	assert.Equal(t, "College c-001", c.Name)
	assert.Equal(t, []string{"NAAC A++", "NBA"}, c.Accreditation)
	assert.Equal(t, 2, c.NIRFRank)

	require.Len(t, c.Programs, 1)
	assert.Equal(t, 150000, c.Programs[0].AnnualFee)

	require.Len(t, c.PlacementStats, 1)
	assert.InDelta(t, 92.5, c.PlacementStats[0].PlacementPercentage, 1e-9)

	require.Len(t, c.MentorRatings, 1)
	assert.True(t, c.MentorRatings[0].Verified)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetColleges_MissingCandidateDropped(t *testing.T) {
	store, mock := newMockStore(t)

	// Only one of the two requested ids has a store record.
	expectCollegeRows(mock, "c-001")
	expectEmptyChildren(mock)

	colleges, err := store.GetColleges(context.Background(), []string{"c-001", "c-missing"})
	require.NoError(t, err)
	assert.Len(t, colleges, 1)
	assert.Contains(t, colleges, "c-001")
	assert.NotContains(t, colleges, "c-missing")
}

func TestGetColleges_EmptyInput(t *testing.T) {
	store, _ := newMockStore(t)

	colleges, err := store.GetColleges(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, colleges)
}

func TestGetColleges_QueryFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT id, name, type, location").
		WillReturnError(errors.New("connection refused"))

	_, err := store.GetColleges(context.Background(), []string{"c-001"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeStoreQueryFailed, apperrors.CodeOf(err))
}
