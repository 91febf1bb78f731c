package models

import "time"

type Candidate struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Tags              []string    `json:"tags"`
	OverallHireSignal *HireSignal `json:"overall_hire_signal,omitempty"`
	PrimaryProfile    *string     `json:"primary_profile,omitempty"`
	SecondaryProfiles []string    `json:"secondary_profiles"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

type Interview struct {
	ID                string          `json:"id"`
	CandidateID       string          `json:"candidate_id"`
	InterviewerName   string          `json:"interviewer_name"`
	InterviewDate     time.Time       `json:"interview_date"`
	InterviewType     InterviewType   `json:"interview_type"`
	NotesRaw          string          `json:"notes_raw"`
	AxisScores        map[Axis]int    `json:"axis_scores"` // missing key = not scored
	AxisNotes         map[Axis]string `json:"axis_notes"`
	PrimaryProfile    *string         `json:"primary_profile,omitempty"`
	SecondaryProfiles []string        `json:"secondary_profiles"`
	HireSignal        HireSignal      `json:"hire_signal"`
	CreatedAt         time.Time       `json:"created_at"`
}

type Profile struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Score returns the score for axis and whether it has been scored.
func (i *Interview) Score(axis Axis) (int, bool) {
	score, ok := i.AxisScores[axis]
	return score, ok && score > 0
}

// CandidatePatch names the candidate fields to overwrite. Nil fields are left
// untouched. An empty PrimaryProfile or OverallHireSignal clears the column.
type CandidatePatch struct {
	Name              *string
	Tags              *[]string
	OverallHireSignal *HireSignal
	PrimaryProfile    *string
	SecondaryProfiles *[]string
}

func (p CandidatePatch) IsEmpty() bool {
	return p.Name == nil && p.Tags == nil && p.OverallHireSignal == nil &&
		p.PrimaryProfile == nil && p.SecondaryProfiles == nil
}

// InterviewPatch names the interview fields to overwrite. AxisScores and
// AxisNotes are merged key by key into the stored maps; a score of 0 unsets
// that axis.
type InterviewPatch struct {
	InterviewerName   *string
	InterviewDate     *time.Time
	InterviewType     *InterviewType
	NotesRaw          *string
	AxisScores        map[Axis]int
	AxisNotes         map[Axis]string
	PrimaryProfile    *string
	SecondaryProfiles *[]string
	HireSignal        *HireSignal
}

func (p InterviewPatch) IsEmpty() bool {
	return p.InterviewerName == nil && p.InterviewDate == nil && p.InterviewType == nil &&
		p.NotesRaw == nil && len(p.AxisScores) == 0 && len(p.AxisNotes) == 0 &&
		p.PrimaryProfile == nil && p.SecondaryProfiles == nil && p.HireSignal == nil
}

// Inputs accepted by the repositories' Create methods.

type CandidateInput struct {
	Name string   `validate:"required,max=200"`
	Tags []string `validate:"dive,required,max=50"`
}

type InterviewInput struct {
	CandidateID       string          `validate:"required"`
	InterviewerName   string          `validate:"required,max=200"`
	InterviewDate     time.Time       `validate:"required"`
	InterviewType     InterviewType   `validate:"required,interview_type"`
	NotesRaw          string          `validate:"max=20000"`
	AxisScores        map[Axis]int    `validate:"axis_scores"`
	AxisNotes         map[Axis]string `validate:"axis_notes"`
	PrimaryProfile    *string         `validate:"omitempty"`
	SecondaryProfiles []string        `validate:"omitempty"`
	HireSignal        HireSignal      `validate:"required,hire_signal"`
}

type ProfileInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=2000"`
}
