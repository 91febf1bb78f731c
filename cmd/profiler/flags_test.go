package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/testutil"
)

func TestParseScores(t *testing.T) {
	scores, err := parseScores([]string{"technical_depth=4", " learning_growth = 2 "})
	require.NoError(t, err)
	assert.Equal(t, map[models.Axis]int{
		models.AxisTechnicalDepth: 4,
		models.AxisLearningGrowth: 2,
	}, scores)

	for _, bad := range []string{"technical_depth", "nope=3", "technical_depth=6", "technical_depth=x"} {
		_, err := parseScores([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestParseNotesKeepsEqualsInText(t *testing.T) {
	notes, err := parseNotes([]string{"business_awareness=knows a=b"})
	require.NoError(t, err)
	assert.Equal(t, "knows a=b", notes[models.AxisBusinessAwareness])
}

func TestCleanList(t *testing.T) {
	assert.Equal(t, []string{}, cleanList([]string{""}))
	assert.Equal(t, []string{"go", "rust"}, cleanList([]string{" go ", "", "rust"}))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	assert.True(t, confirm(strings.NewReader("yes\n"), &out, "Go?"))
	assert.Equal(t, "Go? [y/N] ", out.String())
	assert.False(t, confirm(strings.NewReader("\n"), &out, "Go?"))
	assert.False(t, confirm(strings.NewReader(""), &out, "Go?"))
}

func parseLinkFlags(t *testing.T, args ...string) (autoupdate.Payload, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "link"}
	addLinkFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return payloadFromFlags(cmd)
}

func TestPayloadFromFlagsOnlySetsPassedFields(t *testing.T) {
	p, err := parseLinkFlags(t,
		"--candidate", "c1",
		"--interview", "i1",
		"--secondary", "leader", "--secondary", "learner",
		"--tag", "",
		"--score", "technical_depth=5",
	)
	require.NoError(t, err)

	assert.Equal(t, "c1", p.CandidateID)
	assert.Equal(t, "i1", p.InterviewID.OrZero())
	assert.False(t, p.PrimaryProfile.IsSet())
	assert.False(t, p.OverallHireSignal.IsSet())
	assert.Equal(t, []string{"leader", "learner"}, p.SecondaryProfiles.OrZero())
	assert.True(t, p.Tags.IsSet())
	assert.Empty(t, p.Tags.OrZero())
	assert.Equal(t, map[models.Axis]int{models.AxisTechnicalDepth: 5}, p.AxisScores.OrZero())
	assert.False(t, p.AxisNotes.IsSet())
}

func TestPayloadFromFlagsRejectsBadValues(t *testing.T) {
	_, err := parseLinkFlags(t, "--candidate", "c1", "--signal", "maybe")
	assert.ErrorIs(t, err, apperror.ErrInvalidLink)

	_, err = parseLinkFlags(t, "--candidate", "c1", "--score", "technical_depth=9")
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	return &env{
		cfg:   config.DefaultConfig(),
		log:   logger.NewNop(),
		store: testutil.NewStore(t),
	}
}

func TestReviewAndCommit(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	_, err := e.store.Profiles.SeedDefaults(ctx)
	require.NoError(t, err)
	builder, err := e.store.Profiles.GetBySlug(ctx, "builder")
	require.NoError(t, err)

	c, err := e.store.Candidates.Create(ctx, models.CandidateInput{Name: "Ada"})
	require.NoError(t, err)

	link, err := autoupdate.Encode(e.cfg.Origin, autoupdate.Payload{
		CandidateID:    c.ID,
		PrimaryProfile: autoupdate.Some(builder.ID),
		InterviewID:    autoupdate.Some("missing"),
		AxisScores:     autoupdate.Some(map[models.Axis]int{models.AxisTechnicalDepth: 3}),
	})
	require.NoError(t, err)

	t.Run("declined", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, reviewAndCommit(ctx, e, link, false, strings.NewReader("n\n"), &out))
		assert.Contains(t, out.String(), "Primary Profile: Not set -> Builder")
		assert.Contains(t, out.String(), "Warning: interview missing not found")
		assert.Contains(t, out.String(), "Cancelled, nothing was changed.")

		stored, err := e.store.Candidates.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.PrimaryProfile)
	})

	t.Run("approved", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, reviewAndCommit(ctx, e, link, false, strings.NewReader("y\n"), &out))
		assert.Contains(t, out.String(), "Updated candidate.")
		assert.Contains(t, out.String(), "Interview fields were skipped.")

		stored, err := e.store.Candidates.GetByID(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.PrimaryProfile)
		assert.Equal(t, builder.ID, *stored.PrimaryProfile)
	})

	t.Run("invalid link", func(t *testing.T) {
		err := reviewAndCommit(ctx, e, "not a link", true, strings.NewReader(""), &bytes.Buffer{})
		assert.ErrorIs(t, err, apperror.ErrInvalidLink)
		assert.True(t, strings.HasPrefix(describe(err), "Invalid auto-update link"))
	})
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Candidate not found (Candidate with identifier 'c9' was not found)", describe(apperror.NewNotFound("Candidate", "c9")))
	assert.Equal(t, "Something went wrong, nothing was changed", describe(apperror.NewInternal("disk", nil)))
}

func TestPrintReviewWarnsOnlyForSkippedAxisFields(t *testing.T) {
	candidate := &models.Candidate{ID: "c1", Name: "Ada"}

	var out bytes.Buffer
	printReview(&out, &autoupdate.Review{
		Payload:   autoupdate.Payload{CandidateID: "c1", InterviewID: autoupdate.Some("gone")},
		Candidate: candidate,
	})
	assert.NotContains(t, out.String(), "Warning")

	out.Reset()
	printReview(&out, &autoupdate.Review{
		Payload: autoupdate.Payload{
			CandidateID: "c1",
			InterviewID: autoupdate.Some("gone"),
			AxisNotes:   autoupdate.Some(map[models.Axis]string{models.AxisTechnicalDepth: "solid"}),
		},
		Candidate: candidate,
	})
	assert.Contains(t, out.String(), "Warning: interview gone not found")
}

func TestCompareInterviewsFlagsHighVariance(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)

	c, err := e.store.Candidates.Create(ctx, models.CandidateInput{Name: "Ada"})
	require.NoError(t, err)

	var out bytes.Buffer
	assert.ErrorIs(t, compareInterviews(ctx, e, c.ID, &out), apperror.ErrInvalidInput)
	assert.ErrorIs(t, compareInterviews(ctx, e, "gone", &out), apperror.ErrNotFound)

	for i, scores := range []map[models.Axis]int{
		{models.AxisTechnicalDepth: 1, models.AxisLearningGrowth: 3},
		{models.AxisTechnicalDepth: 4, models.AxisLearningGrowth: 4},
	} {
		_, err := e.store.Interviews.Create(ctx, models.InterviewInput{
			CandidateID:     c.ID,
			InterviewerName: fmt.Sprintf("Interviewer %d", i+1),
			InterviewDate:   time.Date(2025, 4, i+1, 0, 0, 0, 0, time.UTC),
			InterviewType:   models.InterviewTypeTechnical,
			HireSignal:      models.HireSignalYes,
			AxisScores:      scores,
		})
		require.NoError(t, err)
	}

	out.Reset()
	require.NoError(t, compareInterviews(ctx, e, c.ID, &out))

	lines := map[string]string{}
	for _, line := range strings.Split(out.String(), "\n") {
		for _, axis := range models.Axes {
			if strings.HasPrefix(line, axis.Label()) {
				lines[axis.Label()] = line
			}
		}
	}
	assert.Contains(t, out.String(), "Candidate: Ada")
	assert.Contains(t, lines[models.AxisTechnicalDepth.Label()], "2.5")
	assert.Contains(t, lines[models.AxisTechnicalDepth.Label()], "1-4")
	assert.Contains(t, lines[models.AxisTechnicalDepth.Label()], "high variance")
	assert.Contains(t, lines[models.AxisLearningGrowth.Label()], "3.5")
	assert.NotContains(t, lines[models.AxisLearningGrowth.Label()], "high variance")
}
