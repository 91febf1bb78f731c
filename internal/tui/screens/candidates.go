package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/profiler/internal/models"
)

type candidatesMode int

const (
	candidatesModeList candidatesMode = iota
	candidatesModeAdd
	candidatesModeDelete
	candidatesModeLink
)

type candidateRow struct {
	candidate  models.Candidate
	interviews int
}

type Candidates struct {
	deps   *Deps
	width  int
	height int

	rows    []candidateRow
	cursor  int
	mode    candidatesMode
	input   textinput.Model
	loading bool
	err     error
	message string
	notice  string
}

func NewCandidates(deps *Deps) *Candidates {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = 60

	return &Candidates{
		deps:  deps,
		input: ti,
	}
}

func (c *Candidates) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// SetNotice shows notice as an error banner on the next render.
func (c *Candidates) SetNotice(notice string) {
	c.notice = notice
}

// Capturing reports whether keystrokes go to a text input.
func (c *Candidates) Capturing() bool {
	return c.mode == candidatesModeAdd || c.mode == candidatesModeLink
}

type candidatesDataMsg struct {
	rows []candidateRow
	err  error
}

func (c *Candidates) Init() tea.Cmd {
	c.loading = true
	c.mode = candidatesModeList
	c.message = ""
	return c.loadData
}

func (c *Candidates) loadData() tea.Msg {
	ctx := c.deps.ctx()
	candidates, err := c.deps.Store.Candidates.GetAll(ctx)
	if err != nil {
		return candidatesDataMsg{err: err}
	}

	rows := make([]candidateRow, 0, len(candidates))
	for _, candidate := range candidates {
		count, err := c.deps.Store.Interviews.CountByCandidate(ctx, candidate.ID)
		if err != nil {
			return candidatesDataMsg{err: err}
		}
		rows = append(rows, candidateRow{candidate: candidate, interviews: count})
	}
	return candidatesDataMsg{rows: rows}
}

func (c *Candidates) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case candidatesDataMsg:
		c.loading = false
		c.err = msg.err
		c.rows = msg.rows
		if c.cursor >= len(c.rows) {
			c.cursor = max(0, len(c.rows)-1)
		}
		return nil

	case RefreshMsg:
		return c.Init()

	case tea.KeyMsg:
		return c.handleKey(msg)
	}

	if c.mode == candidatesModeAdd || c.mode == candidatesModeLink {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return cmd
	}

	return nil
}

func (c *Candidates) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch c.mode {
	case candidatesModeList:
		return c.handleListKey(msg)
	case candidatesModeAdd:
		return c.handleAddKey(msg)
	case candidatesModeLink:
		return c.handleLinkKey(msg)
	case candidatesModeDelete:
		return c.handleDeleteKey(msg)
	}
	return nil
}

func (c *Candidates) handleListKey(msg tea.KeyMsg) tea.Cmd {
	c.notice = ""
	switch msg.String() {
	case "up", "k":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down", "j":
		if c.cursor < len(c.rows)-1 {
			c.cursor++
		}
	case "a":
		c.mode = candidatesModeAdd
		c.input.Placeholder = "Candidate name"
		c.input.SetValue("")
		c.input.Focus()
	case "u":
		c.mode = candidatesModeLink
		c.input.Placeholder = c.deps.Cfg.Origin + "/apply?data=..."
		c.input.SetValue("")
		c.input.Focus()
	case "d":
		if len(c.rows) > 0 {
			c.mode = candidatesModeDelete
		}
	case "p":
		return Navigate("profiles")
	case "enter":
		if len(c.rows) > 0 {
			return NavigateToCandidate(c.rows[c.cursor].candidate.ID)
		}
	}
	return nil
}

func (c *Candidates) handleAddKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(c.input.Value())
		c.mode = candidatesModeList
		c.input.Blur()
		if name == "" {
			return nil
		}

		candidate, err := c.deps.Store.Candidates.Create(c.deps.ctx(), models.CandidateInput{Name: name})
		if err != nil {
			c.err = err
			return nil
		}
		c.message = fmt.Sprintf("Created candidate: %s", candidate.Name)
		return c.loadData

	case "esc":
		c.mode = candidatesModeList
		c.input.Blur()
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *Candidates) handleLinkKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		link := strings.TrimSpace(c.input.Value())
		c.mode = candidatesModeList
		c.input.Blur()
		if link == "" {
			return nil
		}
		return NavigateToReview(link)

	case "esc":
		c.mode = candidatesModeList
		c.input.Blur()
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

func (c *Candidates) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		row := c.rows[c.cursor]
		c.mode = candidatesModeList
		if err := c.deps.Store.Candidates.Delete(c.deps.ctx(), row.candidate.ID); err != nil {
			c.err = err
			return nil
		}
		c.message = fmt.Sprintf("Deleted candidate: %s", row.candidate.Name)
		return c.loadData

	case "n", "N", "esc":
		c.mode = candidatesModeList
	}
	return nil
}

func (c *Candidates) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("CANDIDATES"))
	b.WriteString("\n\n")

	if c.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if c.notice != "" {
		b.WriteString(ErrorStyle.Render(c.notice))
		b.WriteString("\n\n")
	}

	if c.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(c.err))))
		b.WriteString("\n\n")
		c.err = nil
	}

	if c.message != "" {
		b.WriteString(SuccessStyle.Render(c.message))
		b.WriteString("\n\n")
	}

	switch c.mode {
	case candidatesModeAdd:
		b.WriteString("New candidate name:\n")
		b.WriteString(c.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Save  [esc] Cancel"))
		return b.String()

	case candidatesModeLink:
		b.WriteString("Paste an auto-update link:\n")
		b.WriteString(c.input.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Review  [esc] Cancel"))
		return b.String()

	case candidatesModeDelete:
		if len(c.rows) > 0 {
			row := c.rows[c.cursor]
			b.WriteString(WarningStyle.Render(fmt.Sprintf(
				"Delete candidate '%s' and %d interviews? (y/n)",
				row.candidate.Name,
				row.interviews,
			)))
			b.WriteString("\n")
			return b.String()
		}
	}

	if len(c.rows) == 0 {
		b.WriteString(DimStyle.Render("No candidates yet."))
		b.WriteString("\n\n")
	} else {
		for i, row := range c.rows {
			cursor := "  "
			style := NormalStyle
			if i == c.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			signal := "-"
			if s := row.candidate.OverallHireSignal; s != nil && *s != "" {
				signal = s.Label()
			}

			line := fmt.Sprintf("%s%s (%d interviews, %s)",
				cursor,
				row.candidate.Name,
				row.interviews,
				signal,
			)
			b.WriteString(style.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	help := "[a] Add  [d] Delete  [enter] View  [u] Apply link  [p] Profiles  [q] Quit"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
