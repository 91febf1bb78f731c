package autoupdate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/repository"
)

// Result describes what an apply wrote.
type Result struct {
	CandidateID      string
	InterviewID      string
	CandidateUpdated bool
	InterviewUpdated bool
	// InterviewSkipped is set when the payload named an interview that does
	// not exist under the candidate; its axis fields were dropped.
	InterviewSkipped bool
}

type Applier struct {
	store *repository.Store
	log   logger.Logger
}

func NewApplier(store *repository.Store, log logger.Logger) *Applier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Applier{store: store, log: log}
}

// Apply writes the present fields of p in one transaction. A missing
// candidate fails with apperror.ErrNotFound; a storage failure rolls back and
// fails with apperror.ErrInternal.
func (a *Applier) Apply(ctx context.Context, p Payload) (*Result, error) {
	log := a.log.With(zap.String("candidate_id", p.CandidateID))
	if id, ok := p.InterviewID.Get(); ok {
		log = log.With(zap.String("interview_id", id))
	}

	if err := p.Validate(); err != nil {
		log.Warn("rejected auto-update payload", zap.Error(err))
		return nil, err
	}

	var result *Result
	err := a.store.InTx(ctx, func(tx *repository.Tx) error {
		r, err := applyInTx(ctx, tx, p)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		err = classify(err)
		if errors.Is(err, apperror.ErrNotFound) {
			log.Warn("auto-update target not found", zap.Error(err))
		} else {
			log.Error("auto-update rolled back", err)
		}
		return nil, err
	}

	log.Info("auto-update applied",
		zap.Bool("candidate_updated", result.CandidateUpdated),
		zap.Bool("interview_updated", result.InterviewUpdated),
		zap.Bool("interview_skipped", result.InterviewSkipped),
	)
	return result, nil
}

func applyInTx(ctx context.Context, tx *repository.Tx, p Payload) (*Result, error) {
	candidate, err := tx.Candidates.GetByID(ctx, p.CandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, apperror.NewNotFound("Candidate", p.CandidateID)
	}

	result := &Result{CandidateID: candidate.ID}

	if p.HasCandidateFields() {
		if err := tx.Candidates.Update(ctx, candidate.ID, p.CandidatePatch()); err != nil {
			return nil, err
		}
		result.CandidateUpdated = true
	}

	interviewID, ok := p.InterviewID.Get()
	if !ok || !p.HasAxisFields() {
		return result, nil
	}

	interview, err := tx.Interviews.GetByID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil || interview.CandidateID != candidate.ID {
		result.InterviewSkipped = true
		return result, nil
	}

	patch := p.InterviewPatch()
	if patch.IsEmpty() {
		return result, nil
	}
	if err := tx.Interviews.Update(ctx, interview.ID, candidate.ID, patch); err != nil {
		return nil, err
	}
	result.InterviewID = interview.ID
	result.InterviewUpdated = true

	return result, nil
}

// classify keeps domain errors and folds everything else into ErrInternal.
func classify(err error) error {
	for _, kind := range []error{apperror.ErrNotFound, apperror.ErrInvalidInput, apperror.ErrInvalidLink, apperror.ErrInternal} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return apperror.NewInternal("failed to apply auto-update", err)
}

// ProfileMap loads the current profiles for display lookups.
func (a *Applier) ProfileMap(ctx context.Context) (ProfileMap, error) {
	profiles, err := a.store.Profiles.GetAll(ctx)
	if err != nil {
		return nil, apperror.NewInternal("failed to load profiles", err)
	}
	return NewProfileMap(profiles), nil
}

// load reads the entities a review needs outside of any transaction.
func (a *Applier) load(ctx context.Context, p Payload) (*models.Candidate, *models.Interview, error) {
	candidate, err := a.store.Candidates.GetByID(ctx, p.CandidateID)
	if err != nil {
		return nil, nil, apperror.NewInternal("failed to load candidate", err)
	}
	if candidate == nil {
		return nil, nil, apperror.NewNotFound("Candidate", p.CandidateID)
	}

	id, ok := p.InterviewID.Get()
	if !ok {
		return candidate, nil, nil
	}
	interview, err := a.store.Interviews.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperror.NewInternal("failed to load interview", err)
	}
	if interview != nil && interview.CandidateID != candidate.ID {
		interview = nil
	}
	return candidate, interview, nil
}
