package autoupdate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

type ReviewState int

const (
	StateValidated ReviewState = iota
	StateDiffed
	StateApproved
	StateApplying
	StateApplied
	StateFailed
)

func (s ReviewState) String() string {
	switch s {
	case StateValidated:
		return "validated"
	case StateDiffed:
		return "diffed"
	case StateApproved:
		return "approved"
	case StateApplying:
		return "applying"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("ReviewState(%d)", int(s))
}

// Review carries one payload from decoding through approval to commit.
// Nothing is persisted until Commit succeeds.
type Review struct {
	Payload   Payload
	Candidate *models.Candidate
	Interview *models.Interview
	Changes   []Change
	Result    *Result
	Err       error

	state ReviewState
}

func (r *Review) State() ReviewState {
	return r.state
}

// InterviewMissing reports whether the payload carries axis fields for an
// interview that will be skipped.
func (r *Review) InterviewMissing() bool {
	return r.Payload.HasAxisFields() && r.Payload.InterviewID.IsSet() && r.Interview == nil
}

// Approve records the reviewer's consent. Only a diffed review can be
// approved.
func (r *Review) Approve() error {
	if r.state != StateDiffed {
		return apperror.NewConflict("Review", fmt.Sprintf("cannot approve a review in state %s", r.state))
	}
	r.state = StateApproved
	return nil
}

// Prepare loads the entities p refers to and computes its change-set.
func (a *Applier) Prepare(ctx context.Context, p Payload, lookup ProfileLookup) (*Review, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	review := &Review{Payload: p, state: StateValidated}

	candidate, interview, err := a.load(ctx, p)
	if err != nil {
		return nil, err
	}

	review.Candidate = candidate
	review.Interview = interview
	review.Changes = ComputeChanges(p, candidate, interview, lookup)
	review.state = StateDiffed
	return review, nil
}

// PrepareLink decodes raw and prepares its review.
func (a *Applier) PrepareLink(ctx context.Context, raw string, lookup ProfileLookup) (*Review, error) {
	p, err := Decode(raw)
	if err != nil {
		a.log.Warn("invalid auto-update link", zap.Error(err))
		return nil, err
	}
	return a.Prepare(ctx, p, lookup)
}

// Commit applies an approved review. The review ends in StateApplied or
// StateFailed.
func (a *Applier) Commit(ctx context.Context, r *Review) (*Result, error) {
	if r.state != StateApproved {
		return nil, apperror.NewConflict("Review", fmt.Sprintf("cannot apply a review in state %s", r.state))
	}

	r.state = StateApplying
	result, err := a.Apply(ctx, r.Payload)
	if err != nil {
		r.state = StateFailed
		r.Err = err
		return nil, err
	}

	r.state = StateApplied
	r.Result = result
	return result, nil
}
