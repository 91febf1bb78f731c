package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/profiler/internal/models"
)

type profilesMode int

const (
	profilesModeList profilesMode = iota
	profilesModeAdd
	profilesModeEdit
	profilesModeDelete
)

type profileRow struct {
	profile models.Profile
	inUse   bool
}

type Profiles struct {
	deps   *Deps
	width  int
	height int

	rows        []profileRow
	cursor      int
	mode        profilesMode
	name        textinput.Model
	description textinput.Model
	loading     bool
	err         error
	message     string
}

func NewProfiles(deps *Deps) *Profiles {
	name := textinput.New()
	name.Placeholder = "Profile name"
	name.CharLimit = 100
	name.Width = 40

	description := textinput.New()
	description.Placeholder = "Description"
	description.CharLimit = 2000
	description.Width = 60

	return &Profiles{
		deps:        deps,
		name:        name,
		description: description,
	}
}

func (p *Profiles) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Capturing reports whether keystrokes go to a text input.
func (p *Profiles) Capturing() bool {
	return p.mode == profilesModeAdd || p.mode == profilesModeEdit
}

type profilesDataMsg struct {
	rows []profileRow
	err  error
}

func (p *Profiles) Init() tea.Cmd {
	p.loading = true
	p.mode = profilesModeList
	p.message = ""
	return p.loadData
}

func (p *Profiles) loadData() tea.Msg {
	ctx := p.deps.ctx()
	profiles, err := p.deps.Store.Profiles.GetAll(ctx)
	if err != nil {
		return profilesDataMsg{err: err}
	}

	rows := make([]profileRow, 0, len(profiles))
	for _, profile := range profiles {
		inUse, err := p.deps.Store.Profiles.IsInUse(ctx, profile.ID)
		if err != nil {
			return profilesDataMsg{err: err}
		}
		rows = append(rows, profileRow{profile: profile, inUse: inUse})
	}
	return profilesDataMsg{rows: rows}
}

func (p *Profiles) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case profilesDataMsg:
		p.loading = false
		p.err = msg.err
		p.rows = msg.rows
		if p.cursor >= len(p.rows) {
			p.cursor = max(0, len(p.rows)-1)
		}
		return nil

	case RefreshMsg:
		return p.Init()

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.Capturing() {
		return p.updateInputs(msg)
	}
	return nil
}

func (p *Profiles) updateInputs(msg tea.Msg) tea.Cmd {
	var nameCmd, descCmd tea.Cmd
	p.name, nameCmd = p.name.Update(msg)
	p.description, descCmd = p.description.Update(msg)
	return tea.Batch(nameCmd, descCmd)
}

func (p *Profiles) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch p.mode {
	case profilesModeList:
		return p.handleListKey(msg)
	case profilesModeAdd, profilesModeEdit:
		return p.handleInputKey(msg)
	case profilesModeDelete:
		return p.handleDeleteKey(msg)
	}
	return nil
}

func (p *Profiles) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
	case "a":
		p.mode = profilesModeAdd
		p.startInput("", "")
	case "e":
		if len(p.rows) > 0 {
			p.mode = profilesModeEdit
			profile := p.rows[p.cursor].profile
			p.startInput(profile.Name, profile.Description)
		}
	case "d":
		if len(p.rows) > 0 {
			p.mode = profilesModeDelete
		}
	case "q", "esc":
		return Navigate("candidates")
	}
	return nil
}

func (p *Profiles) startInput(name, description string) {
	p.name.SetValue(name)
	p.description.SetValue(description)
	p.description.Blur()
	p.name.Focus()
}

func (p *Profiles) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "shift+tab":
		if p.name.Focused() {
			p.name.Blur()
			p.description.Focus()
		} else {
			p.description.Blur()
			p.name.Focus()
		}
		return nil

	case "enter":
		input := models.ProfileInput{
			Name:        strings.TrimSpace(p.name.Value()),
			Description: strings.TrimSpace(p.description.Value()),
		}
		mode := p.mode
		p.mode = profilesModeList
		p.name.Blur()
		p.description.Blur()
		if input.Name == "" {
			return nil
		}

		ctx := p.deps.ctx()
		if mode == profilesModeAdd {
			profile, err := p.deps.Store.Profiles.Create(ctx, input)
			if err != nil {
				p.err = err
				return nil
			}
			p.message = fmt.Sprintf("Created profile: %s (%s)", profile.Name, profile.Slug)
		} else {
			if err := p.deps.Store.Profiles.Update(ctx, p.rows[p.cursor].profile.ID, input); err != nil {
				p.err = err
				return nil
			}
			p.message = fmt.Sprintf("Updated profile: %s", input.Name)
		}
		return p.loadData

	case "esc":
		p.mode = profilesModeList
		p.name.Blur()
		p.description.Blur()
		return nil
	}

	return p.updateInputs(msg)
}

func (p *Profiles) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		profile := p.rows[p.cursor].profile
		p.mode = profilesModeList
		if err := p.deps.Store.Profiles.Delete(p.deps.ctx(), profile.ID); err != nil {
			p.err = err
			return nil
		}
		p.message = fmt.Sprintf("Deleted profile: %s", profile.Name)
		return p.loadData

	case "n", "N", "esc":
		p.mode = profilesModeList
	}
	return nil
}

func (p *Profiles) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("PROFILES"))
	b.WriteString("\n\n")

	if p.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	if p.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(p.err))))
		b.WriteString("\n\n")
		p.err = nil
	}

	if p.message != "" {
		b.WriteString(SuccessStyle.Render(p.message))
		b.WriteString("\n\n")
	}

	if p.Capturing() {
		if p.mode == profilesModeAdd {
			b.WriteString("New profile:\n")
		} else {
			b.WriteString("Edit profile:\n")
		}
		b.WriteString(p.name.View())
		b.WriteString("\n")
		b.WriteString(p.description.View())
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[tab] Next field  [enter] Save  [esc] Cancel"))
		return b.String()
	}

	if p.mode == profilesModeDelete && len(p.rows) > 0 {
		row := p.rows[p.cursor]
		if row.inUse {
			b.WriteString(WarningStyle.Render(fmt.Sprintf(
				"Profile '%s' is assigned to candidates or interviews; they will show its id instead. Delete anyway? (y/n)",
				row.profile.Name,
			)))
		} else {
			b.WriteString(WarningStyle.Render(fmt.Sprintf("Delete profile '%s'? (y/n)", row.profile.Name)))
		}
		b.WriteString("\n")
		return b.String()
	}

	if len(p.rows) == 0 {
		b.WriteString(DimStyle.Render("No profiles yet."))
		b.WriteString("\n\n")
	} else {
		for i, row := range p.rows {
			cursor := "  "
			style := NormalStyle
			if i == p.cursor {
				cursor = "> "
				style = SelectedStyle
			}

			line := fmt.Sprintf("%s%s [%s]", cursor, row.profile.Name, row.profile.Slug)
			if row.inUse {
				line += " *"
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
			if row.profile.Description != "" {
				b.WriteString(DimStyle.Render("    " + row.profile.Description))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("* in use"))
		b.WriteString("\n")
	}

	help := "[a] Add  [e] Edit  [d] Delete  [q] Back"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
