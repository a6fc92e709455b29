package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/talent-search/internal/db"
	"github.com/jonathan/talent-search/internal/skills"
	"github.com/jonathan/talent-search/internal/types"
)

type fakeIndexer struct {
	indexed []string
	err     error
}

func (f *fakeIndexer) Index(_ context.Context, c *types.Candidate) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, c.ID)
	return nil
}

type countingRecorder struct{ created, updated int }

func (r *countingRecorder) CandidateIngested(isNew bool) {
	if isNew {
		r.created++
	} else {
		r.updated++
	}
}

func newService(t *testing.T, indexer Indexer, rec Recorder) (*Service, db.Store) {
	t.Helper()
	store, err := db.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "candidates.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	extractor := skills.NewExtractor(skills.DefaultDictionary())
	return NewService(store, indexer, extractor, zap.NewNop(), rec), store
}

func validRequest() Request {
	return Request{
		Name:       "  Priya Sharma ",
		Email:      "priya@example.com",
		Location:   "Pune",
		Experience: types.IntPtr(7),
		Filename:   "priya.pdf",
		ResumeText: "Backend engineer.   Built services in Java and Spring Boot on AWS.\r\nSome golang too.",
	}
}

func TestIngest_NewCandidate(t *testing.T) {
	indexer := &fakeIndexer{}
	rec := &countingRecorder{}
	svc, store := newService(t, indexer, rec)

	res, err := svc.Ingest(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, res.IsNew)
	assert.NotEmpty(t, res.CandidateID)
	assert.Equal(t, res.CandidateID, res.Candidate.ID)
	assert.Equal(t, "Priya Sharma", res.Candidate.Name)
	assert.Equal(t, []string{"Java", "Spring Boot", "AWS", "Go"}, res.Candidate.Skills)
	assert.Equal(t, db.HashContent(res.Candidate.RawText), res.Candidate.TextHash)
	assert.Equal(t, []string{res.CandidateID}, indexer.indexed)
	assert.Equal(t, 1, rec.created)

	stored, err := store.GetCandidate(context.Background(), res.CandidateID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 7, *stored.Experience)
	assert.Equal(t, res.Candidate.Skills, stored.Skills)
}

func TestIngest_ReingestUpdatesInPlace(t *testing.T) {
	indexer := &fakeIndexer{}
	rec := &countingRecorder{}
	svc, store := newService(t, indexer, rec)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, validRequest())
	require.NoError(t, err)

	again := validRequest()
	again.Location = "Mumbai"
	again.ResumeText = "Python and Django developer"
	second, err := svc.Ingest(ctx, again)
	require.NoError(t, err)

	assert.False(t, second.IsNew)
	assert.Equal(t, first.CandidateID, second.CandidateID)
	assert.Equal(t, 1, rec.created)
	assert.Equal(t, 1, rec.updated)

	all, err := store.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Mumbai", all[0].Location)
	assert.Equal(t, []string{"Python", "Django"}, all[0].Skills)
}

func TestIngest_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Request)
		wantField string
	}{
		{"missing name", func(r *Request) { r.Name = "   " }, "name"},
		{"bad email", func(r *Request) { r.Email = "not-an-email" }, "email"},
		{"missing location", func(r *Request) { r.Location = "" }, "location"},
		{"negative experience", func(r *Request) { r.Experience = types.IntPtr(-1) }, "experience"},
		{"implausible experience", func(r *Request) { r.Experience = types.IntPtr(101) }, "experience"},
		{"blank resume", func(r *Request) { r.ResumeText = " \n\n " }, "resume_text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexer := &fakeIndexer{}
			svc, store := newService(t, indexer, nil)
			req := validRequest()
			tt.mutate(&req)

			res, err := svc.Ingest(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, res)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Empty(t, indexer.indexed)

			all, err := store.ListCandidates(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestIngest_NoEmailDedupesByText(t *testing.T) {
	indexer := &fakeIndexer{}
	svc, store := newService(t, indexer, nil)
	ctx := context.Background()

	req := validRequest()
	req.Email = ""
	req.Experience = nil
	req.Filename = "a.pdf"
	first, err := svc.Ingest(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.IsNew)
	assert.Nil(t, first.Candidate.Experience)

	req.Filename = "b.pdf"
	second, err := svc.Ingest(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.IsNew)
	assert.Equal(t, first.CandidateID, second.CandidateID)

	all, err := store.ListCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Email)
	assert.Nil(t, all[0].Experience)
	assert.Equal(t, "b.pdf", all[0].Filename)
}

func TestIngest_IndexFailure(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("embedding timeout")}
	svc, _ := newService(t, indexer, nil)

	_, err := svc.Ingest(context.Background(), validRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, indexer.err)
	assert.Contains(t, err.Error(), "failed to index candidate")
}

func TestIngest_WithoutIndexer(t *testing.T) {
	svc, _ := newService(t, nil, nil)
	res, err := svc.Ingest(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, res.IsNew)
}
