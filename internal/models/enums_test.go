package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHireSignalRankFollowsOrder(t *testing.T) {
	assert.Equal(t, 1, HireSignalStrongNo.Rank())
	assert.Equal(t, 3, HireSignalNeutral.Rank())
	assert.Equal(t, 5, HireSignalStrongYes.Rank())
	assert.Equal(t, 0, HireSignal("maybe").Rank())
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Business/Product Awareness", AxisBusinessAwareness.Label())
	assert.Equal(t, "Strong Yes", HireSignalStrongYes.Label())
	assert.Equal(t, "System Design", InterviewTypeSystemDesign.Label())
	assert.Equal(t, "charisma", Axis("charisma").Label())
	assert.False(t, Axis("charisma").Valid())
}

func TestInterviewScoreTreatsMissingAsUnscored(t *testing.T) {
	iv := Interview{AxisScores: map[Axis]int{AxisTechnicalDepth: 4}}

	score, ok := iv.Score(AxisTechnicalDepth)
	assert.True(t, ok)
	assert.Equal(t, 4, score)

	_, ok = iv.Score(AxisAutonomyOwnership)
	assert.False(t, ok)
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, CandidatePatch{}.IsEmpty())
	tags := []string{}
	assert.False(t, CandidatePatch{Tags: &tags}.IsEmpty())

	assert.True(t, InterviewPatch{}.IsEmpty())
	assert.False(t, InterviewPatch{AxisNotes: map[Axis]string{AxisTechnicalDepth: ""}}.IsEmpty())
}
