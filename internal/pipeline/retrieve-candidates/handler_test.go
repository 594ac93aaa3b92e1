package retrievecandidates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/index"
	"college-recommender/internal/models"
)

type fakeIndex struct {
	hits []index.Candidate
	err  error
	k    int
}

func (f *fakeIndex) Search(_ context.Context, _ *models.StudentProfile, k int) ([]index.Candidate, error) {
	f.k = k
	return f.hits, f.err
}

type fakeStore struct {
	colleges map[string]*models.College
	err      error
}

func (f *fakeStore) GetColleges(_ context.Context, ids []string) (map[string]*models.College, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.College)
	for _, id := range ids {
		if c, ok := f.colleges[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func validProfile() *models.StudentProfile {
	return &models.StudentProfile{
		MarksPercentage:  85,
		PreferredStreams: []models.Stream{models.StreamEngineering},
		Budget:           models.BudgetRange{Min: 0, Max: 300000},
		Location:         "Delhi",
	}
}

func college(id string) *models.College {
	return &models.College{ID: id, Name: "College " + id, Type: models.CollegeGovernment}
}

func TestExecute_JoinsIndexHitsWithStoreRecords(t *testing.T) {
	idx := &fakeIndex{hits: []index.Candidate{
		{CollegeID: "c-001", Similarity: 0.9},
		{CollegeID: "c-002", Similarity: 0.7},
	}}
	st := &fakeStore{colleges: map[string]*models.College{
		"c-001": college("c-001"),
		"c-002": college("c-002"),
	}}

	h := NewHandler(LoadConfig(), idx, st, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Profile: validProfile(), K: 5})
	require.NoError(t, err)

	require.Len(t, out.Candidates, 2)
	assert.Equal(t, "c-001", out.Candidates[0].CollegeID)
	assert.NotNil(t, out.Candidates[0].College)
	assert.Equal(t, 5, idx.k)
}

func TestExecute_DropsCandidatesWithoutStoreRecord(t *testing.T) {
	idx := &fakeIndex{hits: []index.Candidate{
		{CollegeID: "c-001", Similarity: 0.9},
		{CollegeID: "c-ghost", Similarity: 0.8},
	}}
	st := &fakeStore{colleges: map[string]*models.College{"c-001": college("c-001")}}

	h := NewHandler(LoadConfig(), idx, st, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Profile: validProfile()})
	require.NoError(t, err)

	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "c-001", out.Candidates[0].CollegeID)
	assert.Equal(t, 1, out.Dropped)
}

func TestExecute_DeduplicatesIndexHits(t *testing.T) {
	idx := &fakeIndex{hits: []index.Candidate{
		{CollegeID: "c-001", Similarity: 0.9},
		{CollegeID: "c-001", Similarity: 0.6},
	}}
	st := &fakeStore{colleges: map[string]*models.College{"c-001": college("c-001")}}

	h := NewHandler(LoadConfig(), idx, st, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{Profile: validProfile()})
	require.NoError(t, err)

	require.Len(t, out.Candidates, 1)
	assert.InDelta(t, 0.9, out.Candidates[0].Similarity, 1e-9, "first occurrence wins")
}

func TestExecute_ClampsKToMax(t *testing.T) {
	idx := &fakeIndex{}
	h := NewHandler(&Config{DefaultK: 10, MaxK: 20, Timeout: LoadConfig().Timeout}, idx, &fakeStore{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Profile: validProfile(), K: 500})
	require.NoError(t, err)
	assert.Equal(t, 20, idx.k)
}

func TestExecute_InvalidProfileRejected(t *testing.T) {
	h := NewHandler(LoadConfig(), &fakeIndex{}, &fakeStore{}, logger.NewTestLogger(t))

	profile := validProfile()
	profile.Budget = models.BudgetRange{Min: 100, Max: 50}

	_, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidProfile, apperrors.CodeOf(err))
}

func TestExecute_IndexErrorPropagates(t *testing.T) {
	idx := &fakeIndex{err: apperrors.NewIndexQueryFailedError(errors.New("boom"))}
	h := NewHandler(LoadConfig(), idx, &fakeStore{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Profile: validProfile()})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeIndexQueryFailed, apperrors.CodeOf(err))
}
