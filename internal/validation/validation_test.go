package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

func validInterview() models.InterviewInput {
	return models.InterviewInput{
		CandidateID:     "c1",
		InterviewerName: "Ada",
		InterviewDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		InterviewType:   models.InterviewTypeTechnical,
		AxisScores:      map[models.Axis]int{models.AxisTechnicalDepth: 4},
		AxisNotes:       map[models.Axis]string{models.AxisLearningGrowth: "curious"},
		HireSignal:      models.HireSignalYes,
	}
}

func TestStructAcceptsValidInterview(t *testing.T) {
	assert.NoError(t, Struct(validInterview()))
}

func TestStructRejectsInvalidInterview(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *models.InterviewInput)
		field  string
	}{
		{"missing interviewer", func(in *models.InterviewInput) { in.InterviewerName = "" }, "InterviewerName"},
		{"zero date", func(in *models.InterviewInput) { in.InterviewDate = time.Time{} }, "InterviewDate"},
		{"unknown type", func(in *models.InterviewInput) { in.InterviewType = "pairing" }, "InterviewType"},
		{"unknown signal", func(in *models.InterviewInput) { in.HireSignal = "maybe" }, "HireSignal"},
		{"score too high", func(in *models.InterviewInput) { in.AxisScores[models.AxisTechnicalDepth] = 6 }, "AxisScores"},
		{"score too low", func(in *models.InterviewInput) { in.AxisScores[models.AxisTechnicalDepth] = 0 }, "AxisScores"},
		{"unknown score axis", func(in *models.InterviewInput) { in.AxisScores["charisma"] = 3 }, "AxisScores"},
		{"unknown note axis", func(in *models.InterviewInput) { in.AxisNotes["charisma"] = "x" }, "AxisNotes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInterview()
			tt.mutate(&in)

			err := Struct(in)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestStructCandidateInput(t *testing.T) {
	assert.NoError(t, Struct(models.CandidateInput{Name: "Grace", Tags: []string{"backend", "backend"}}))
	assert.ErrorIs(t, Struct(models.CandidateInput{Name: ""}), apperror.ErrInvalidInput)
	assert.ErrorIs(t, Struct(models.CandidateInput{Name: "Grace", Tags: []string{""}}), apperror.ErrInvalidInput)
}
