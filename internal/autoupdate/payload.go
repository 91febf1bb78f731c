package autoupdate

import (
	"fmt"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

// Payload is a decoded auto-update instruction for one candidate and,
// optionally, one of its interviews.
type Payload struct {
	CandidateID       string
	InterviewID       Optional[string]
	PrimaryProfile    Optional[string]
	SecondaryProfiles Optional[[]string]
	OverallHireSignal Optional[models.HireSignal]
	AxisScores        Optional[map[models.Axis]int]
	AxisNotes         Optional[map[models.Axis]string]
	Tags              Optional[[]string]
}

// HasCandidateFields reports whether any candidate-level field is present.
func (p Payload) HasCandidateFields() bool {
	return p.PrimaryProfile.IsSet() || p.SecondaryProfiles.IsSet() ||
		p.OverallHireSignal.IsSet() || p.Tags.IsSet()
}

// HasAxisFields reports whether any interview-scoped field is present.
func (p Payload) HasAxisFields() bool {
	return p.AxisScores.IsSet() || p.AxisNotes.IsSet()
}

// CandidatePatch converts the candidate-level fields into a store patch.
func (p Payload) CandidatePatch() models.CandidatePatch {
	var patch models.CandidatePatch
	if v, ok := p.PrimaryProfile.Get(); ok {
		patch.PrimaryProfile = &v
	}
	if v, ok := p.SecondaryProfiles.Get(); ok {
		list := cloneList(v)
		patch.SecondaryProfiles = &list
	}
	if v, ok := p.OverallHireSignal.Get(); ok {
		patch.OverallHireSignal = &v
	}
	if v, ok := p.Tags.Get(); ok {
		list := cloneList(v)
		patch.Tags = &list
	}
	return patch
}

// InterviewPatch converts the axis fields into a store patch that only names
// the axes present in the payload.
func (p Payload) InterviewPatch() models.InterviewPatch {
	var patch models.InterviewPatch
	if scores, ok := p.AxisScores.Get(); ok && len(scores) > 0 {
		patch.AxisScores = make(map[models.Axis]int, len(scores))
		for axis, score := range scores {
			patch.AxisScores[axis] = score
		}
	}
	if notes, ok := p.AxisNotes.Get(); ok && len(notes) > 0 {
		patch.AxisNotes = make(map[models.Axis]string, len(notes))
		for axis, note := range notes {
			patch.AxisNotes[axis] = note
		}
	}
	return patch
}

// Validate applies the value-domain rules to a payload built in code, the
// same ones Decode enforces on links.
func (p Payload) Validate() error {
	if p.CandidateID == "" {
		return apperror.NewInvalidLink("candidateId is required", nil)
	}
	if signal, ok := p.OverallHireSignal.Get(); ok && !signal.Valid() {
		return apperror.NewInvalidLink(fmt.Sprintf("unknown overall_hire_signal %q", signal), nil)
	}
	if scores, ok := p.AxisScores.Get(); ok {
		for axis, score := range scores {
			if !axis.Valid() {
				return apperror.NewInvalidLink(fmt.Sprintf("unknown axis %q in axis_scores", axis), nil)
			}
			if score < models.MinScore || score > models.MaxScore {
				return apperror.NewInvalidLink(fmt.Sprintf("axis_scores.%s must be between 1 and 5", axis), nil)
			}
		}
	}
	if notes, ok := p.AxisNotes.Get(); ok {
		for axis := range notes {
			if !axis.Valid() {
				return apperror.NewInvalidLink(fmt.Sprintf("unknown axis %q in axis_notes", axis), nil)
			}
		}
	}
	return nil
}

func cloneList(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
