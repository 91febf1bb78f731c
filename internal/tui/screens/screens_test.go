package screens

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/testutil"
)

type fakeClipboard struct {
	text string
}

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return nil
}

func newDeps(t *testing.T) (*Deps, *fakeClipboard) {
	t.Helper()
	store := testutil.NewStore(t)
	clip := &fakeClipboard{}
	log := logger.NewNop()
	return &Deps{
		Store:     store,
		Applier:   autoupdate.NewApplier(store, log),
		Cfg:       config.DefaultConfig(),
		Log:       log,
		Clipboard: clip.WriteAll,
	}, clip
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func createCandidateWithInterview(t *testing.T, deps *Deps) (*models.Candidate, *models.Interview) {
	t.Helper()
	ctx := context.Background()
	c, err := deps.Store.Candidates.Create(ctx, models.CandidateInput{Name: "Ada"})
	require.NoError(t, err)
	iv, err := deps.Store.Interviews.Create(ctx, models.InterviewInput{
		CandidateID:     c.ID,
		InterviewerName: "Dana",
		InterviewDate:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		InterviewType:   models.InterviewTypeTechnical,
		HireSignal:      models.HireSignalYes,
	})
	require.NoError(t, err)
	return c, iv
}

func TestReviewInvalidLinkReturnsToCandidates(t *testing.T) {
	deps, _ := newDeps(t)
	r := NewReview(deps)
	r.SetLink("http://localhost:5173/apply?data=%%%")

	cmd := r.Update(r.Init()())
	require.NotNil(t, cmd)

	nav, ok := cmd().(NavigateMsg)
	require.True(t, ok)
	assert.Equal(t, "candidates", nav.Screen)
	assert.Equal(t, "Invalid auto-update link", nav.Notice)
}

func TestReviewStaleCandidate(t *testing.T) {
	deps, _ := newDeps(t)
	link, err := autoupdate.Encode(deps.Cfg.Origin, autoupdate.Payload{
		CandidateID: "gone",
		Tags:        autoupdate.Some([]string{"go"}),
	})
	require.NoError(t, err)

	r := NewReview(deps)
	r.SetLink(link)
	assert.Nil(t, r.Update(r.Init()()))
	assert.Contains(t, r.View(), "Candidate not found")

	nav := r.Update(key("enter"))().(NavigateMsg)
	assert.Equal(t, "candidates", nav.Screen)
}

func TestReviewApplyFlow(t *testing.T) {
	deps, _ := newDeps(t)
	c, iv := createCandidateWithInterview(t, deps)

	link, err := autoupdate.Encode(deps.Cfg.Origin, autoupdate.Payload{
		CandidateID: c.ID,
		InterviewID: autoupdate.Some(iv.ID),
		Tags:        autoupdate.Some([]string{"go"}),
		AxisScores:  autoupdate.Some(map[models.Axis]int{models.AxisTechnicalDepth: 4}),
	})
	require.NoError(t, err)

	r := NewReview(deps)
	r.SetLink(link)
	r.Update(r.Init()())

	view := r.View()
	assert.Contains(t, view, "Candidate: Ada")
	assert.Contains(t, view, "Tags: Not set -> go")
	assert.Contains(t, view, "Technical Depth Score: Not set -> 4/5")
	assert.Contains(t, view, "2 of 2 fields will change.")

	// nothing is written before approval
	stored, err := deps.Store.Candidates.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags)

	commit := r.Update(key("y"))
	require.NotNil(t, commit)
	r.Update(commit())
	assert.Contains(t, r.View(), "Changes applied!")

	stored, err = deps.Store.Candidates.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, stored.Tags)

	nav := r.Update(key("enter"))().(NavigateMsg)
	assert.Equal(t, "candidate", nav.Screen)
	assert.Equal(t, c.ID, nav.CandidateID)
}

func TestReviewCancelLeavesStoreUntouched(t *testing.T) {
	deps, _ := newDeps(t)
	c, _ := createCandidateWithInterview(t, deps)

	link, err := autoupdate.Encode(deps.Cfg.Origin, autoupdate.Payload{
		CandidateID: c.ID,
		Tags:        autoupdate.Some([]string{"go"}),
	})
	require.NoError(t, err)

	r := NewReview(deps)
	r.SetLink(link)
	r.Update(r.Init()())

	nav := r.Update(key("n"))().(NavigateMsg)
	assert.Equal(t, "candidates", nav.Screen)

	stored, err := deps.Store.Candidates.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Tags)
}

func TestCandidateDetailKeepsLastInterview(t *testing.T) {
	deps, _ := newDeps(t)
	c, _ := createCandidateWithInterview(t, deps)
	before, err := deps.Store.Candidates.GetByID(context.Background(), c.ID)
	require.NoError(t, err)

	d := NewCandidateDetail(deps)
	d.SetCandidate(c.ID)
	d.Update(d.Init()())

	d.Update(key("d"))
	assert.Nil(t, d.Update(key("y")))
	assert.Contains(t, d.View(), "cannot delete the last interview of a candidate")

	count, err := deps.Store.Interviews.CountByCandidate(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	after, err := deps.Store.Candidates.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, *before, *after)
}

func TestCandidateDetailCopiesPrompts(t *testing.T) {
	deps, clip := newDeps(t)
	c, _ := createCandidateWithInterview(t, deps)

	d := NewCandidateDetail(deps)
	d.SetCandidate(c.ID)
	d.Update(d.Init()())

	d.Update(key("c"))
	assert.Contains(t, clip.text, "**Candidate:** Ada")
	assert.Contains(t, clip.text, deps.Cfg.Origin+"/apply?data=")
	assert.Contains(t, d.View(), "Interview prompt copied to clipboard")

	d.Update(key("s"))
	assert.Contains(t, d.View(), "Summary prompt copied to clipboard")
}

func TestCandidateDetailMissingCandidate(t *testing.T) {
	deps, _ := newDeps(t)

	d := NewCandidateDetail(deps)
	d.SetCandidate("gone")
	nav := d.Update(d.Init()())().(NavigateMsg)
	assert.Equal(t, "candidates", nav.Screen)
	assert.Equal(t, "Candidate not found", nav.Notice)
}

func TestCandidatesAddThroughInput(t *testing.T) {
	deps, _ := newDeps(t)

	c := NewCandidates(deps)
	c.Update(c.Init()())

	c.Update(key("a"))
	assert.True(t, c.Capturing())
	for _, r := range "Quinn" {
		c.Update(key(string(r)))
	}
	c.Update(c.Update(key("enter"))())

	assert.False(t, c.Capturing())
	assert.Contains(t, c.View(), "Created candidate: Quinn")
	assert.Contains(t, c.View(), "Quinn (0 interviews, -)")
}

func TestProfilesDeleteWarnsWhenInUse(t *testing.T) {
	deps, _ := newDeps(t)
	ctx := context.Background()
	profile, err := deps.Store.Profiles.Create(ctx, models.ProfileInput{Name: "Builder"})
	require.NoError(t, err)
	c, err := deps.Store.Candidates.Create(ctx, models.CandidateInput{Name: "Ada"})
	require.NoError(t, err)
	require.NoError(t, deps.Store.Candidates.Update(ctx, c.ID, models.CandidatePatch{PrimaryProfile: &profile.ID}))

	p := NewProfiles(deps)
	p.Update(p.Init()())
	p.Update(key("d"))
	assert.Contains(t, p.View(), "is assigned to candidates or interviews")

	p.Update(p.Update(key("y"))())
	assert.Contains(t, p.View(), "Deleted profile: Builder")
}

func TestCandidateDetailComparesInterviews(t *testing.T) {
	deps, _ := newDeps(t)
	c, _ := createCandidateWithInterview(t, deps)

	d := NewCandidateDetail(deps)
	d.SetCandidate(c.ID)
	d.Update(d.Init()())

	d.Update(key("v"))
	assert.Contains(t, d.View(), "Need at least two interviews to compare")

	ctx := context.Background()
	first, err := deps.Store.Interviews.GetByCandidateID(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.NoError(t, deps.Store.Interviews.Update(ctx, first[0].ID, c.ID, models.InterviewPatch{
		AxisScores: map[models.Axis]int{models.AxisTechnicalDepth: 2, models.AxisLearningGrowth: 4},
	}))
	_, err = deps.Store.Interviews.Create(ctx, models.InterviewInput{
		CandidateID:     c.ID,
		InterviewerName: "Eve",
		InterviewDate:   time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		InterviewType:   models.InterviewTypeCulture,
		HireSignal:      models.HireSignalNo,
		AxisScores:      map[models.Axis]int{models.AxisTechnicalDepth: 5, models.AxisLearningGrowth: 4},
	})
	require.NoError(t, err)
	d.Update(d.Init()())

	d.Update(key("v"))
	view := d.View()
	assert.Contains(t, view, "Compare interviews")
	assert.Contains(t, view, "3.5   2-5  high variance")
	assert.Contains(t, view, "4.0   4-4")
	assert.NotContains(t, view, "4.0   4-4  high variance")

	d.Update(key("esc"))
	assert.NotContains(t, d.View(), "Compare interviews")
}
