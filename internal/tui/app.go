package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/logger"
	"github.com/emilianohg/profiler/internal/repository"
	"github.com/emilianohg/profiler/internal/tui/screens"
)

type Screen int

const (
	ScreenCandidates Screen = iota
	ScreenCandidate
	ScreenProfiles
	ScreenReview
)

type App struct {
	deps          *screens.Deps
	currentScreen Screen
	width         int
	height        int

	// link opened on startup, if any
	applyURL string

	// Screen models
	candidates *screens.Candidates
	candidate  *screens.CandidateDetail
	profiles   *screens.Profiles
	review     *screens.Review
}

func NewApp(deps *screens.Deps, applyURL string) *App {
	return &App{
		deps:          deps,
		currentScreen: ScreenCandidates,
		applyURL:      applyURL,
		candidates:    screens.NewCandidates(deps),
		candidate:     screens.NewCandidateDetail(deps),
		profiles:      screens.NewProfiles(deps),
		review:        screens.NewReview(deps),
	}
}

func (a *App) Init() tea.Cmd {
	if a.applyURL != "" {
		a.currentScreen = ScreenReview
		a.review.SetLink(a.applyURL)
		return a.review.Init()
	}
	return a.candidates.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.currentScreen == ScreenCandidates && !a.candidates.Capturing() {
				return a, tea.Quit
			}
			// Let individual screens handle 'q' for going back
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.candidates.SetSize(msg.Width, msg.Height)
		a.candidate.SetSize(msg.Width, msg.Height)
		a.profiles.SetSize(msg.Width, msg.Height)
		a.review.SetSize(msg.Width, msg.Height)

	case screens.NavigateMsg:
		return a.handleNavigation(msg)
	}

	var cmd tea.Cmd
	switch a.currentScreen {
	case ScreenCandidates:
		cmd = a.candidates.Update(msg)
	case ScreenCandidate:
		cmd = a.candidate.Update(msg)
	case ScreenProfiles:
		cmd = a.profiles.Update(msg)
	case ScreenReview:
		cmd = a.review.Update(msg)
	}

	return a, cmd
}

func (a *App) handleNavigation(msg screens.NavigateMsg) (tea.Model, tea.Cmd) {
	switch msg.Screen {
	case "candidates":
		a.currentScreen = ScreenCandidates
		a.candidates.SetNotice(msg.Notice)
		return a, a.candidates.Init()
	case "candidate":
		a.currentScreen = ScreenCandidate
		a.candidate.SetCandidate(msg.CandidateID)
		return a, a.candidate.Init()
	case "profiles":
		a.currentScreen = ScreenProfiles
		return a, a.profiles.Init()
	case "review":
		a.currentScreen = ScreenReview
		a.review.SetLink(msg.Link)
		return a, a.review.Init()
	}
	return a, nil
}

func (a *App) View() string {
	var content string

	switch a.currentScreen {
	case ScreenCandidates:
		content = a.candidates.View()
	case ScreenCandidate:
		content = a.candidate.View()
	case ScreenProfiles:
		content = a.profiles.View()
	case ScreenReview:
		content = a.review.View()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.height).
		Render(content)
}

// Run starts the TUI. A non-empty applyURL opens its review first.
func Run(store *repository.Store, cfg *config.Config, log logger.Logger, applyURL string) error {
	deps := &screens.Deps{
		Store:     store,
		Applier:   autoupdate.NewApplier(store, log),
		Cfg:       cfg,
		Log:       log,
		Clipboard: clipboard.WriteAll,
	}

	app := NewApp(deps, applyURL)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
