package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/repository"
	"github.com/emilianohg/profiler/internal/testutil"
)

func seed(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Profiles.SeedDefaults(ctx)
	require.NoError(t, err)

	c, err := store.Candidates.Create(ctx, models.CandidateInput{Name: "Ada", Tags: []string{"go", "go"}})
	require.NoError(t, err)

	_, err = store.Interviews.Create(ctx, models.InterviewInput{
		CandidateID:     c.ID,
		InterviewerName: "Dana",
		InterviewDate:   time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		InterviewType:   models.InterviewTypeFounder,
		NotesRaw:        "Great energy",
		AxisScores:      map[models.Axis]int{models.AxisAutonomyOwnership: 5},
		HireSignal:      models.HireSignalStrongYes,
	})
	require.NoError(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	source := testutil.NewStore(t, repository.WithClock(clock.Now))
	seed(t, source)

	path := filepath.Join(t.TempDir(), "exports", DefaultFileName(clock.Last()))
	summary, err := ExportFile(ctx, source, path, clock.Last())
	require.NoError(t, err)
	assert.Equal(t, "1 candidates, 1 interviews, 5 profiles", summary.String())

	target := testutil.NewStore(t)
	_, err = target.Candidates.Create(ctx, models.CandidateInput{Name: "Overwritten"})
	require.NoError(t, err)

	_, err = ImportFile(ctx, target, path)
	require.NoError(t, err)

	wantCandidates, _ := source.Candidates.GetAll(ctx)
	gotCandidates, err := target.Candidates.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantCandidates, gotCandidates)

	wantInterviews, _ := source.Interviews.GetAll(ctx)
	gotInterviews, err := target.Interviews.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantInterviews, gotInterviews)

	wantProfiles, _ := source.Profiles.GetAll(ctx)
	gotProfiles, err := target.Profiles.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, wantProfiles, gotProfiles)
}

func TestExportEmptyStoreWritesEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	_, err := Export(context.Background(), testutil.NewStore(t), &buf, time.Now())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw["candidates"]))
	assert.JSONEq(t, `1`, string(raw["version"]))
}

func TestImportRejectsBadSnapshots(t *testing.T) {
	tests := map[string]string{
		"not json":         `{"version":`,
		"wrong version":    `{"version":2}`,
		"orphan interview": `{"version":1,"interviews":[{"id":"i1","candidate_id":"nobody","interview_type":"technical","hire_signal":"yes"}]}`,
		"bad score":        `{"version":1,"candidates":[{"id":"c1","name":"A"}],"interviews":[{"id":"i1","candidate_id":"c1","interview_type":"technical","hire_signal":"yes","axis_scores":{"technical_depth":9}}]}`,
		"duplicate slug":   `{"version":1,"profiles":[{"id":"p1","slug":"a"},{"id":"p2","slug":"a"}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			store := testutil.NewStore(t)
			seed(t, store)

			_, err := Import(context.Background(), store, strings.NewReader(body))
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)

			count, err := store.Profiles.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 5, count, "store untouched")
		})
	}
}
