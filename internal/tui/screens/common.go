package screens

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/repository"
)

// Deps is shared by every screen.
type Deps struct {
	Store   *repository.Store
	Applier *autoupdate.Applier
	Cfg     *config.Config
	Log     logger.Logger

	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error
}

func (d *Deps) ctx() context.Context {
	return context.Background()
}

// NavigateMsg is sent when navigation to another screen is requested
type NavigateMsg struct {
	Screen      string
	CandidateID string
	Link        string
	Notice      string
}

func Navigate(screen string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen}
	}
}

func NavigateToCandidate(candidateID string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: "candidate", CandidateID: candidateID}
	}
}

func NavigateToReview(link string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: "review", Link: link}
	}
}

// NavigateWithNotice returns to screen and shows notice there.
func NavigateWithNotice(screen, notice string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Screen: screen, Notice: notice}
	}
}

// RefreshMsg is sent when data should be refreshed
type RefreshMsg struct{}

func Refresh() tea.Cmd {
	return func() tea.Msg {
		return RefreshMsg{}
	}
}

// errorText is the message shown for err. Conflicts and rejected input
// show their details; everything else gets the short user message.
func errorText(err error) string {
	var appErr *apperror.AppError
	if (errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrInvalidInput)) &&
		errors.As(err, &appErr) && appErr.Details != "" {
		return appErr.Details
	}
	return apperror.UserMessage(err)
}

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginBottom(1)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	NormalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)
