package autoupdate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/repository"
	"github.com/emilianohg/profiler/internal/testutil"
)

type ApplySuite struct {
	suite.Suite
	ctx     context.Context
	clock   *testutil.Clock
	store   *repository.Store
	logs    *observer.ObservedLogs
	applier *Applier

	candidate *models.Candidate
	interview *models.Interview
	other     *models.Interview
}

func TestApplySuite(t *testing.T) {
	suite.Run(t, new(ApplySuite))
}

func (s *ApplySuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = testutil.NewClock(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))
	s.store = testutil.NewStore(s.T(), repository.WithClock(s.clock.Now))

	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs
	s.applier = NewApplier(s.store, logger.New(zap.New(core)))

	var err error
	s.candidate, err = s.store.Candidates.Create(s.ctx, models.CandidateInput{Name: "Ada", Tags: []string{"backend"}})
	s.Require().NoError(err)

	s.interview = s.addInterview(s.candidate.ID)

	otherCandidate, err := s.store.Candidates.Create(s.ctx, models.CandidateInput{Name: "Grace"})
	s.Require().NoError(err)
	s.other = s.addInterview(otherCandidate.ID)

	s.candidate = s.reloadCandidate()
}

func (s *ApplySuite) addInterview(candidateID string) *models.Interview {
	iv, err := s.store.Interviews.Create(s.ctx, models.InterviewInput{
		CandidateID:     candidateID,
		InterviewerName: "Dana",
		InterviewDate:   time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC),
		InterviewType:   models.InterviewTypeTechnical,
		NotesRaw:        "Solid fundamentals",
		AxisScores: map[models.Axis]int{
			models.AxisTechnicalDepth:    3,
			models.AxisLearningGrowth:    4,
			models.AxisBusinessAwareness: 2,
		},
		AxisNotes:  map[models.Axis]string{models.AxisLearningGrowth: "Fast learner"},
		HireSignal: models.HireSignalYes,
	})
	s.Require().NoError(err)
	return iv
}

func (s *ApplySuite) reloadCandidate() *models.Candidate {
	c, err := s.store.Candidates.GetByID(s.ctx, s.candidate.ID)
	s.Require().NoError(err)
	s.Require().NotNil(c)
	return c
}

func (s *ApplySuite) reloadInterview(id string) *models.Interview {
	iv, err := s.store.Interviews.GetByID(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(iv)
	return iv
}

func (s *ApplySuite) TestTagsOnlyTouchesTags() {
	result, err := s.applier.Apply(s.ctx, Payload{CandidateID: s.candidate.ID, Tags: Some([]string{"x", "y"})})
	s.Require().NoError(err)
	s.True(result.CandidateUpdated)
	s.False(result.InterviewUpdated)

	got := s.reloadCandidate()
	s.Equal([]string{"x", "y"}, got.Tags)
	s.Equal(s.clock.Last(), got.UpdatedAt)

	want := *s.candidate
	want.Tags = got.Tags
	want.UpdatedAt = got.UpdatedAt
	s.Equal(want, *got)

	s.Equal(*s.interview, *s.reloadInterview(s.interview.ID))
	s.Equal(*s.other, *s.reloadInterview(s.other.ID))
}

func (s *ApplySuite) TestSingleAxisScore() {
	result, err := s.applier.Apply(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some(s.interview.ID),
		AxisScores:  Some(map[models.Axis]int{models.AxisTechnicalDepth: 4}),
	})
	s.Require().NoError(err)
	s.False(result.CandidateUpdated)
	s.True(result.InterviewUpdated)
	s.Equal(s.interview.ID, result.InterviewID)

	got := s.reloadInterview(s.interview.ID)
	s.Equal(map[models.Axis]int{
		models.AxisTechnicalDepth:    4,
		models.AxisLearningGrowth:    4,
		models.AxisBusinessAwareness: 2,
	}, got.AxisScores)
	s.Equal(s.interview.AxisNotes, got.AxisNotes)
	s.Equal(s.interview.CreatedAt, got.CreatedAt)
	s.Equal(s.interview.NotesRaw, got.NotesRaw)

	candidate := s.reloadCandidate()
	s.True(candidate.UpdatedAt.After(s.candidate.UpdatedAt))
	s.Equal(s.candidate.Tags, candidate.Tags)
}

func (s *ApplySuite) TestAxisNotesMergeByKey() {
	_, err := s.applier.Apply(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some(s.interview.ID),
		AxisNotes:   Some(map[models.Axis]string{models.AxisTechnicalDepth: "Knows the scheduler"}),
	})
	s.Require().NoError(err)

	got := s.reloadInterview(s.interview.ID)
	s.Equal("Knows the scheduler", got.AxisNotes[models.AxisTechnicalDepth])
	s.Equal("Fast learner", got.AxisNotes[models.AxisLearningGrowth])
}

func (s *ApplySuite) TestMissingCandidateChangesNothing() {
	_, err := s.applier.Apply(s.ctx, Payload{
		CandidateID: "missing",
		InterviewID: Some(s.interview.ID),
		Tags:        Some([]string{"x"}),
		AxisScores:  Some(map[models.Axis]int{models.AxisTechnicalDepth: 1}),
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	s.Equal(*s.candidate, *s.reloadCandidate())
	s.Equal(*s.interview, *s.reloadInterview(s.interview.ID))
	s.Equal(1, s.logs.FilterMessage("auto-update target not found").Len())
}

func (s *ApplySuite) TestForeignInterviewSkipsAxisFields() {
	result, err := s.applier.Apply(s.ctx, Payload{
		CandidateID:       s.candidate.ID,
		InterviewID:       Some(s.other.ID),
		OverallHireSignal: Some(models.HireSignalStrongYes),
		AxisScores:        Some(map[models.Axis]int{models.AxisTechnicalDepth: 1}),
	})
	s.Require().NoError(err)
	s.True(result.CandidateUpdated)
	s.True(result.InterviewSkipped)
	s.False(result.InterviewUpdated)

	s.Equal(models.HireSignalStrongYes, *s.reloadCandidate().OverallHireSignal)
	s.Equal(*s.other, *s.reloadInterview(s.other.ID))
}

func (s *ApplySuite) TestUnknownInterviewSkipsAxisFields() {
	result, err := s.applier.Apply(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some("gone"),
		AxisNotes:   Some(map[models.Axis]string{models.AxisTechnicalDepth: "x"}),
	})
	s.Require().NoError(err)
	s.True(result.InterviewSkipped)
	s.False(result.CandidateUpdated)
	s.Equal(*s.candidate, *s.reloadCandidate())
}

func (s *ApplySuite) TestStorageFailureRollsBackEverything() {
	_, err := s.store.DB().Exec(`
		CREATE TRIGGER fail_interview_update BEFORE UPDATE ON interviews
		BEGIN
			SELECT RAISE(ABORT, 'disk on fire');
		END`)
	s.Require().NoError(err)

	_, err = s.applier.Apply(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some(s.interview.ID),
		Tags:        Some([]string{"changed"}),
		AxisScores:  Some(map[models.Axis]int{models.AxisTechnicalDepth: 5}),
	})
	s.ErrorIs(err, apperror.ErrInternal)
	s.Equal("Something went wrong, nothing was changed", apperror.UserMessage(err))

	s.Equal(*s.candidate, *s.reloadCandidate())
	s.Equal(*s.interview, *s.reloadInterview(s.interview.ID))
	s.Equal(1, s.logs.FilterMessage("auto-update rolled back").Len())
}

func (s *ApplySuite) TestReviewLifecycle() {
	link, err := Encode("http://localhost:5173", Payload{
		CandidateID:    s.candidate.ID,
		InterviewID:    Some(s.interview.ID),
		PrimaryProfile: Some("p1"),
		AxisScores:     Some(map[models.Axis]int{models.AxisAutonomyOwnership: 5}),
	})
	s.Require().NoError(err)

	review, err := s.applier.PrepareLink(s.ctx, link, ProfileMap{"p1": "Builder"})
	s.Require().NoError(err)
	s.Equal(StateDiffed, review.State())
	s.Len(review.Changes, 2)
	s.Equal("Builder", review.Changes[0].Proposed)

	_, err = s.applier.Commit(s.ctx, review)
	s.ErrorIs(err, apperror.ErrConflict, "commit requires approval")
	s.Nil(s.reloadCandidate().PrimaryProfile)

	s.Require().NoError(review.Approve())
	s.ErrorIs(review.Approve(), apperror.ErrConflict)

	result, err := s.applier.Commit(s.ctx, review)
	s.Require().NoError(err)
	s.Equal(StateApplied, review.State())
	s.Same(result, review.Result)
	s.Equal("p1", *s.reloadCandidate().PrimaryProfile)
	s.Equal(5, s.reloadInterview(s.interview.ID).AxisScores[models.AxisAutonomyOwnership])

	_, err = s.applier.Commit(s.ctx, review)
	s.ErrorIs(err, apperror.ErrConflict)
}

func (s *ApplySuite) TestReviewFailsForStaleCandidate() {
	review, err := s.applier.Prepare(s.ctx, Payload{CandidateID: s.candidate.ID, Tags: Some([]string{"x"})}, nil)
	s.Require().NoError(err)
	s.Require().NoError(review.Approve())

	s.Require().NoError(s.store.Candidates.Delete(s.ctx, s.candidate.ID))

	_, err = s.applier.Commit(s.ctx, review)
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Equal(StateFailed, review.State())
	s.ErrorIs(review.Err, apperror.ErrNotFound)
}

func (s *ApplySuite) TestPrepareRejectsInvalidLink() {
	_, err := s.applier.PrepareLink(s.ctx, "http://localhost:5173/apply?data=nope", nil)
	s.ErrorIs(err, apperror.ErrInvalidLink)
	s.Equal("Invalid auto-update link", apperror.UserMessage(err))
}

func (s *ApplySuite) TestPrepareMarksMissingInterview() {
	review, err := s.applier.Prepare(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some(s.other.ID),
		AxisScores:  Some(map[models.Axis]int{models.AxisTechnicalDepth: 2}),
	}, nil)
	s.Require().NoError(err)
	s.True(review.InterviewMissing())
	s.Empty(review.Changes)
}

func (s *ApplySuite) TestMissingInterviewWithoutAxisFieldsIsNotFlagged() {
	review, err := s.applier.Prepare(s.ctx, Payload{
		CandidateID: s.candidate.ID,
		InterviewID: Some("gone"),
		Tags:        Some([]string{"x"}),
	}, nil)
	s.Require().NoError(err)
	s.False(review.InterviewMissing())
	s.Len(review.Changes, 1)
}
