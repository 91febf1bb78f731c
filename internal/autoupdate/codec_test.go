package autoupdate

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
)

const origin = "http://localhost:5173"

func linkFor(json string) string {
	return origin + "/apply?data=" + base64.StdEncoding.EncodeToString([]byte(json))
}

func TestEncodeCanonicalForm(t *testing.T) {
	p := Payload{
		CandidateID: "c1",
		Tags:        Some([]string{"go", "k8s"}),
		AxisScores: Some(map[models.Axis]int{
			models.AxisCollaborationCommunication: 5,
			models.AxisTechnicalDepth:             4,
		}),
		InterviewID: Some("i1"),
	}

	link, err := Encode(origin+"/", p)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, origin+"/apply?data="))

	data := strings.TrimPrefix(link, origin+"/apply?data=")
	body, err := base64.StdEncoding.DecodeString(data)
	require.NoError(t, err)
	assert.Equal(t,
		`{"candidateId":"c1","interviewId":"i1","axis_scores":{"technical_depth":4,"collaboration_communication":5},"tags":["go","k8s"]}`,
		string(body))
}

func TestEncodeOmitsAbsentFields(t *testing.T) {
	link, err := Encode(origin, Payload{CandidateID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, linkFor(`{"candidateId":"c1"}`), link)
}

func TestEncodeRejectsInvalidPayload(t *testing.T) {
	payloads := map[string]Payload{
		"missing candidate":  {Tags: Some([]string{"x"})},
		"unknown signal":     {CandidateID: "c1", OverallHireSignal: Some(models.HireSignal("maybe"))},
		"unknown score axis": {CandidateID: "c1", AxisScores: Some(map[models.Axis]int{"charisma": 3})},
		"score out of range": {CandidateID: "c1", AxisScores: Some(map[models.Axis]int{models.AxisTechnicalDepth: 9})},
		"unknown note axis":  {CandidateID: "c1", AxisNotes: Some(map[models.Axis]string{"charisma": "high"})},
	}

	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			link, err := Encode(origin, p)
			assert.ErrorIs(t, err, apperror.ErrInvalidLink)
			assert.Empty(t, link)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := []Payload{
		{CandidateID: "c1"},
		{CandidateID: "c1", Tags: Some([]string{"x", "y"})},
		{CandidateID: "c1", Tags: Some([]string{})},
		{CandidateID: "c1", PrimaryProfile: Some("")},
		{
			CandidateID:       "c1",
			InterviewID:       Some("i1"),
			PrimaryProfile:    Some("p1"),
			SecondaryProfiles: Some([]string{"p2", "p3"}),
			OverallHireSignal: Some(models.HireSignalStrongYes),
			AxisScores:        Some(map[models.Axis]int{models.AxisTechnicalDepth: 4, models.AxisLearningGrowth: 1}),
			AxisNotes:         Some(map[models.Axis]string{models.AxisBusinessAwareness: "Asks about <revenue> & churn ✓"}),
			Tags:              Some([]string{"senior"}),
		},
	}

	for _, p := range payloads {
		link, err := Encode(origin, p)
		require.NoError(t, err)

		got, err := Decode(link)
		require.NoError(t, err, link)
		assert.Equal(t, p, got)
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{"not a url", "::::"},
		{"relative url", "/apply?data=" + base64.StdEncoding.EncodeToString([]byte(`{"candidateId":"c1"}`))},
		{"wrong path", origin + "/candidates?data=" + base64.StdEncoding.EncodeToString([]byte(`{"candidateId":"c1"}`))},
		{"missing data", origin + "/apply"},
		{"empty data", origin + "/apply?data="},
		{"bad base64", origin + "/apply?data=%%%%"},
		{"not json", linkFor(`candidateId=c1`)},
		{"json array", linkFor(`["c1"]`)},
		{"json null", linkFor(`null`)},
		{"missing candidate", linkFor(`{"tags":["x"]}`)},
		{"empty candidate", linkFor(`{"candidateId":""}`)},
		{"numeric candidate", linkFor(`{"candidateId":7}`)},
		{"null interview", linkFor(`{"candidateId":"c1","interviewId":null}`)},
		{"numeric primary", linkFor(`{"candidateId":"c1","primary_profile":3}`)},
		{"secondary not array", linkFor(`{"candidateId":"c1","secondary_profiles":"p1"}`)},
		{"secondary mixed", linkFor(`{"candidateId":"c1","secondary_profiles":["p1",2]}`)},
		{"unknown signal", linkFor(`{"candidateId":"c1","overall_hire_signal":"maybe"}`)},
		{"scores not object", linkFor(`{"candidateId":"c1","axis_scores":[4]}`)},
		{"scores null", linkFor(`{"candidateId":"c1","axis_scores":null}`)},
		{"unknown score axis", linkFor(`{"candidateId":"c1","axis_scores":{"charisma":3}}`)},
		{"score zero", linkFor(`{"candidateId":"c1","axis_scores":{"technical_depth":0}}`)},
		{"score six", linkFor(`{"candidateId":"c1","axis_scores":{"technical_depth":6}}`)},
		{"score fraction", linkFor(`{"candidateId":"c1","axis_scores":{"technical_depth":3.5}}`)},
		{"score string", linkFor(`{"candidateId":"c1","axis_scores":{"technical_depth":"3"}}`)},
		{"notes not object", linkFor(`{"candidateId":"c1","axis_notes":"great"}`)},
		{"unknown note axis", linkFor(`{"candidateId":"c1","axis_notes":{"charisma":"high"}}`)},
		{"non-string note", linkFor(`{"candidateId":"c1","axis_notes":{"technical_depth":4}}`)},
		{"tags not array", linkFor(`{"candidateId":"c1","tags":"x"}`)},
		{"one bad field discards all", linkFor(`{"candidateId":"c1","tags":["x"],"axis_scores":{"technical_depth":9}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.link)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrInvalidLink)
			assert.Equal(t, Payload{}, p)
		})
	}
}

func TestDecodeKeepsPresentFieldsVerbatim(t *testing.T) {
	p, err := Decode(linkFor(`{"candidateId":"c1","secondary_profiles":[],"axis_notes":{"technical_depth":""},"extra":true}`))
	require.NoError(t, err)

	secondary, ok := p.SecondaryProfiles.Get()
	assert.True(t, ok)
	assert.Equal(t, []string{}, secondary)

	notes, ok := p.AxisNotes.Get()
	assert.True(t, ok)
	assert.Equal(t, map[models.Axis]string{models.AxisTechnicalDepth: ""}, notes)

	assert.False(t, p.Tags.IsSet())
	assert.False(t, p.InterviewID.IsSet())
	assert.False(t, p.AxisScores.IsSet())
}

func TestDecodeAcceptsIntegralFloatScore(t *testing.T) {
	p, err := Decode(linkFor(`{"candidateId":"c1","axis_scores":{"technical_depth":4.0}}`))
	require.NoError(t, err)
	assert.Equal(t, map[models.Axis]int{models.AxisTechnicalDepth: 4}, p.AxisScores.OrZero())
}

func TestDecodeToleratesQueryMangling(t *testing.T) {
	// ">>>" encodes to base64 containing '+'; an unescaped '+' arrives as a space.
	body := `{"candidateId":"c1","axis_notes":{"technical_depth":">>>"}}`
	data := base64.StdEncoding.EncodeToString([]byte(body))
	require.Contains(t, data, "+")

	p, err := Decode(origin + "/apply?data=" + data)
	require.NoError(t, err)
	assert.Equal(t, ">>>", p.AxisNotes.OrZero()[models.AxisTechnicalDepth])

	unpadded := strings.TrimRight(base64.StdEncoding.EncodeToString([]byte(`{"candidateId":"c123"}`)), "=")
	p, err = Decode(origin + "/apply?data=" + unpadded)
	require.NoError(t, err)
	assert.Equal(t, "c123", p.CandidateID)
}

func TestDecodeWithoutInterviewKeepsAxisFields(t *testing.T) {
	p, err := Decode(linkFor(`{"candidateId":"c1","axis_scores":{"collaboration_communication":5}}`))
	require.NoError(t, err)
	assert.True(t, p.HasAxisFields())
	assert.False(t, p.HasCandidateFields())
	assert.False(t, p.InterviewID.IsSet())
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Payload{}.Validate(), apperror.ErrInvalidLink)
	assert.ErrorIs(t, Payload{CandidateID: "c1", OverallHireSignal: Some(models.HireSignal("meh"))}.Validate(), apperror.ErrInvalidLink)
	assert.ErrorIs(t, Payload{CandidateID: "c1", AxisScores: Some(map[models.Axis]int{models.AxisTechnicalDepth: 0})}.Validate(), apperror.ErrInvalidLink)
	assert.ErrorIs(t, Payload{CandidateID: "c1", AxisNotes: Some(map[models.Axis]string{"charisma": "x"})}.Validate(), apperror.ErrInvalidLink)
	assert.NoError(t, Payload{CandidateID: "c1", AxisScores: Some(map[models.Axis]int{models.AxisTechnicalDepth: 5})}.Validate())
}
