package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/prompt"
)

type candidateMode int

const (
	candidateModeView candidateMode = iota
	candidateModeRename
	candidateModeDeleteInterview
	candidateModeCompare
)

// CandidateDetail shows one candidate with its interviews.
type CandidateDetail struct {
	deps   *Deps
	width  int
	height int

	candidateID string
	candidate   *models.Candidate
	interviews  []models.Interview
	profiles    []models.Profile
	cursor      int
	mode        candidateMode
	input       textinput.Model
	loading     bool
	err         error
	message     string
}

func NewCandidateDetail(deps *Deps) *CandidateDetail {
	ti := textinput.New()
	ti.Placeholder = "Candidate name"
	ti.CharLimit = 200
	ti.Width = 40

	return &CandidateDetail{
		deps:  deps,
		input: ti,
	}
}

func (c *CandidateDetail) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *CandidateDetail) SetCandidate(id string) {
	if id != c.candidateID {
		c.cursor = 0
	}
	c.candidateID = id
}

// Capturing reports whether keystrokes go to a text input.
func (c *CandidateDetail) Capturing() bool {
	return c.mode == candidateModeRename
}

type candidateDataMsg struct {
	candidate  *models.Candidate
	interviews []models.Interview
	profiles   []models.Profile
	err        error
}

func (c *CandidateDetail) Init() tea.Cmd {
	c.loading = true
	c.mode = candidateModeView
	c.message = ""
	c.err = nil
	return c.loadData
}

func (c *CandidateDetail) loadData() tea.Msg {
	ctx := c.deps.ctx()
	candidate, err := c.deps.Store.Candidates.GetByID(ctx, c.candidateID)
	if err != nil {
		return candidateDataMsg{err: err}
	}
	if candidate == nil {
		return candidateDataMsg{}
	}

	interviews, err := c.deps.Store.Interviews.GetByCandidateID(ctx, c.candidateID)
	if err != nil {
		return candidateDataMsg{err: err}
	}
	profiles, err := c.deps.Store.Profiles.GetAll(ctx)
	if err != nil {
		return candidateDataMsg{err: err}
	}
	return candidateDataMsg{candidate: candidate, interviews: interviews, profiles: profiles}
}

func (c *CandidateDetail) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case candidateDataMsg:
		c.loading = false
		c.err = msg.err
		if msg.err == nil && msg.candidate == nil {
			return NavigateWithNotice("candidates", "Candidate not found")
		}
		c.candidate = msg.candidate
		c.interviews = msg.interviews
		c.profiles = msg.profiles
		if c.cursor >= len(c.interviews) {
			c.cursor = max(0, len(c.interviews)-1)
		}
		return nil

	case RefreshMsg:
		return c.Init()

	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	if c.mode == candidateModeRename {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return cmd
	}
	return nil
}

func (c *CandidateDetail) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch c.mode {
	case candidateModeView:
		return c.handleViewKey(msg)
	case candidateModeRename:
		return c.handleRenameKey(msg)
	case candidateModeDeleteInterview:
		return c.handleDeleteKey(msg)
	case candidateModeCompare:
		switch msg.String() {
		case "v", "q", "esc":
			c.mode = candidateModeView
		}
	}
	return nil
}

func (c *CandidateDetail) handleViewKey(msg tea.KeyMsg) tea.Cmd {
	if c.candidate == nil {
		if s := msg.String(); s == "q" || s == "esc" {
			return Navigate("candidates")
		}
		return nil
	}

	switch msg.String() {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.interviews)-1 {
			c.cursor++
		}
	case "e":
		c.mode = candidateModeRename
		c.input.SetValue(c.candidate.Name)
		c.input.Focus()
	case "d":
		if len(c.interviews) > 0 {
			c.mode = candidateModeDeleteInterview
		}
	case "c":
		if len(c.interviews) > 0 {
			iv := c.interviews[c.cursor]
			text, err := prompt.Interview(c.deps.Cfg.Origin, c.candidate, &iv, c.profiles)
			c.copy(text, err, "Interview prompt copied to clipboard")
		}
	case "v":
		if len(c.interviews) < 2 {
			c.message = "Need at least two interviews to compare"
			return nil
		}
		c.message = ""
		c.mode = candidateModeCompare
	case "s":
		text, err := prompt.CandidateSummary(c.deps.Cfg.Origin, c.candidate, c.interviews, c.profiles)
		c.copy(text, err, "Summary prompt copied to clipboard")
	case "q", "esc":
		return Navigate("candidates")
	}
	return nil
}

func (c *CandidateDetail) copy(text string, err error, success string) {
	if err == nil {
		err = c.deps.Clipboard(text)
	}
	if err != nil {
		c.deps.Log.Error("failed to copy prompt", err, zap.String("candidate_id", c.candidateID))
		c.err = err
		return
	}
	c.message = success
}

func (c *CandidateDetail) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(c.input.Value())
		c.mode = candidateModeView
		c.input.Blur()
		if name == "" || name == c.candidate.Name {
			return nil
		}

		if err := c.deps.Store.Candidates.Update(c.deps.ctx(), c.candidateID, models.CandidatePatch{Name: &name}); err != nil {
			c.err = err
			return nil
		}
		c.message = fmt.Sprintf("Renamed to %s", name)
		return c.loadData

	case "esc":
		c.mode = candidateModeView
		c.input.Blur()
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *CandidateDetail) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		iv := c.interviews[c.cursor]
		c.mode = candidateModeView
		if err := c.deps.Store.Interviews.Delete(c.deps.ctx(), iv.ID, c.candidateID); err != nil {
			c.err = err
			return nil
		}
		c.message = fmt.Sprintf("Deleted interview by %s", iv.InterviewerName)
		return c.loadData

	case "n", "N", "esc":
		c.mode = candidateModeView
	}
	return nil
}

func (c *CandidateDetail) View() string {
	var b strings.Builder

	if c.loading {
		b.WriteString(TitleStyle.Render("CANDIDATE"))
		b.WriteString("\n\nLoading...\n")
		return b.String()
	}

	if c.candidate == nil {
		b.WriteString(TitleStyle.Render("CANDIDATE"))
		b.WriteString("\n\n")
		if c.err != nil {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(c.err))))
			b.WriteString("\n\n")
		}
		b.WriteString(HelpStyle.Render("[q] Back"))
		return b.String()
	}

	b.WriteString(TitleStyle.Render(strings.ToUpper(c.candidate.Name)))
	b.WriteString("\n\n")

	if c.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(c.err))))
		b.WriteString("\n\n")
		c.err = nil
	}

	if c.message != "" {
		b.WriteString(SuccessStyle.Render(c.message))
		b.WriteString("\n\n")
	}

	if c.mode == candidateModeRename {
		b.WriteString("Rename candidate:\n")
		b.WriteString(c.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()
	}

	if c.mode == candidateModeDeleteInterview {
		iv := c.interviews[c.cursor]
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Delete the %s interview by %s? (y/n)",
			iv.InterviewType.Label(),
			iv.InterviewerName,
		)))
		b.WriteString("\n")
		return b.String()
	}

	if c.mode == candidateModeCompare {
		c.viewComparison(&b)
		b.WriteString(HelpStyle.Render("[v/esc] Back"))
		return b.String()
	}

	c.viewSummary(&b)
	c.viewInterviews(&b)

	help := "[e] Rename  [d] Delete interview  [v] Compare  [c] Copy interview prompt  [s] Copy summary prompt  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}

func (c *CandidateDetail) viewSummary(b *strings.Builder) {
	lookup := autoupdate.NewProfileMap(c.profiles)
	name := func(id string) string {
		if n, ok := lookup.ProfileName(id); ok {
			return n
		}
		return id
	}

	signal := autoupdate.NotSet
	if s := c.candidate.OverallHireSignal; s != nil && *s != "" {
		signal = s.Label()
	}
	primary := autoupdate.NotSet
	if p := c.candidate.PrimaryProfile; p != nil && *p != "" {
		primary = name(*p)
	}
	secondary := autoupdate.None
	if len(c.candidate.SecondaryProfiles) > 0 {
		names := make([]string, 0, len(c.candidate.SecondaryProfiles))
		for _, id := range c.candidate.SecondaryProfiles {
			names = append(names, name(id))
		}
		secondary = strings.Join(names, ", ")
	}
	tags := autoupdate.None
	if len(c.candidate.Tags) > 0 {
		tags = strings.Join(c.candidate.Tags, ", ")
	}

	fmt.Fprintf(b, "Hire signal:        %s\n", signal)
	fmt.Fprintf(b, "Primary profile:    %s\n", primary)
	fmt.Fprintf(b, "Secondary profiles: %s\n", secondary)
	fmt.Fprintf(b, "Tags:               %s\n", tags)
	fmt.Fprintf(b, "Updated:            %s\n\n", DimStyle.Render(c.candidate.UpdatedAt.Local().Format("2006-01-02 15:04")))
}

func (c *CandidateDetail) viewInterviews(b *strings.Builder) {
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Interviews (%d)", len(c.interviews))))
	b.WriteString("\n")

	if len(c.interviews) == 0 {
		b.WriteString(DimStyle.Render("No interviews yet."))
		b.WriteString("\n\n")
		return
	}

	for i, iv := range c.interviews {
		cursor := "  "
		style := NormalStyle
		if i == c.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		line := fmt.Sprintf("%s%s  %s (%s)  %s",
			cursor,
			iv.InterviewDate.Format("2006-01-02"),
			iv.InterviewerName,
			iv.InterviewType.Label(),
			iv.HireSignal.Label(),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	iv := c.interviews[c.cursor]
	for _, axis := range models.Axes {
		score := DimStyle.Render("-")
		if s, ok := iv.Score(axis); ok {
			score = fmt.Sprintf("%d/5", s)
		}
		fmt.Fprintf(b, "  %-28s %s\n", axis.Label(), score)
	}
	b.WriteString("\n")
}

func (c *CandidateDetail) viewComparison(b *strings.Builder) {
	b.WriteString(SubtitleStyle.Render("Compare interviews"))
	b.WriteString("\n")
	for i, iv := range c.interviews {
		fmt.Fprintf(b, "  #%d  %s  %s (%s)  %s\n",
			i+1,
			iv.InterviewDate.Format("2006-01-02"),
			iv.InterviewerName,
			iv.InterviewType.Label(),
			iv.HireSignal.Label(),
		)
	}
	b.WriteString("\n")

	header := fmt.Sprintf("  %-28s", "Axis")
	for i := range c.interviews {
		header += fmt.Sprintf(" %-4s", fmt.Sprintf("#%d", i+1))
	}
	header += "  Avg   Range"
	b.WriteString(DimStyle.Render(header))
	b.WriteString("\n")

	for _, row := range prompt.CompareInterviews(c.interviews) {
		line := fmt.Sprintf("  %-28s", row.Axis.Label())
		for _, score := range row.Scores {
			cell := "-"
			if score > 0 {
				cell = fmt.Sprintf("%d", score)
			}
			line += fmt.Sprintf(" %-4s", cell)
		}
		if row.Stats.Scored == 0 {
			line += "  -     -"
			b.WriteString(line)
			b.WriteString("\n")
			continue
		}
		line += fmt.Sprintf("  %.1f   %d-%d", row.Stats.Average, row.Stats.Min, row.Stats.Max)
		if row.Stats.HighVariance() {
			b.WriteString(WarningStyle.Render(line + "  high variance"))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
