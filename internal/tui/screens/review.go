package screens

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/autoupdate"
)

type reviewMode int

const (
	reviewModeLoading reviewMode = iota
	reviewModeConfirm
	reviewModeApplying
	reviewModeComplete
)

// Review walks an auto-update link through diff, approval and apply.
type Review struct {
	deps   *Deps
	width  int
	height int

	link    string
	mode    reviewMode
	review  *autoupdate.Review
	result  *autoupdate.Result
	loading bool
	err     error
}

func NewReview(deps *Deps) *Review {
	return &Review{deps: deps}
}

func (r *Review) SetSize(width, height int) {
	r.width = width
	r.height = height
}

func (r *Review) SetLink(link string) {
	r.link = link
}

type reviewPreparedMsg struct {
	review *autoupdate.Review
	err    error
}

type reviewAppliedMsg struct {
	result *autoupdate.Result
	err    error
}

func (r *Review) Init() tea.Cmd {
	r.mode = reviewModeLoading
	r.loading = true
	r.review = nil
	r.result = nil
	r.err = nil
	return r.prepare
}

func (r *Review) prepare() tea.Msg {
	ctx := r.deps.ctx()
	lookup, err := r.deps.Applier.ProfileMap(ctx)
	if err != nil {
		return reviewPreparedMsg{err: err}
	}
	review, err := r.deps.Applier.PrepareLink(ctx, r.link, lookup)
	return reviewPreparedMsg{review: review, err: err}
}

func (r *Review) commit() tea.Msg {
	result, err := r.deps.Applier.Commit(r.deps.ctx(), r.review)
	return reviewAppliedMsg{result: result, err: err}
}

func (r *Review) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case reviewPreparedMsg:
		r.loading = false
		if errors.Is(msg.err, apperror.ErrInvalidLink) {
			return NavigateWithNotice("candidates", apperror.UserMessage(msg.err))
		}
		r.err = msg.err
		r.review = msg.review
		r.mode = reviewModeConfirm
		return nil

	case reviewAppliedMsg:
		r.loading = false
		r.err = msg.err
		r.result = msg.result
		r.mode = reviewModeComplete
		return nil

	case tea.KeyMsg:
		return r.handleKey(msg)
	}

	return nil
}

func (r *Review) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch r.mode {
	case reviewModeConfirm:
		return r.handleConfirmKey(msg)
	case reviewModeComplete:
		return r.handleCompleteKey(msg)
	}
	return nil
}

func (r *Review) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	if r.review == nil {
		switch msg.String() {
		case "enter", "q", "esc":
			return Navigate("candidates")
		}
		return nil
	}

	switch msg.String() {
	case "enter", "y":
		if err := r.review.Approve(); err != nil {
			r.err = err
			return nil
		}
		r.mode = reviewModeApplying
		r.loading = true
		return r.commit
	case "esc", "n", "q":
		return Navigate("candidates")
	}
	return nil
}

func (r *Review) handleCompleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		if r.err == nil && r.result != nil {
			return NavigateToCandidate(r.result.CandidateID)
		}
		return Navigate("candidates")
	case "q", "esc":
		return Navigate("candidates")
	}
	return nil
}

func (r *Review) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("REVIEW AUTO-UPDATE"))
	b.WriteString("\n\n")

	if r.loading && r.mode == reviewModeApplying {
		b.WriteString("Applying changes...\n")
		return b.String()
	}

	if r.loading {
		b.WriteString("Loading...\n")
		return b.String()
	}

	switch r.mode {
	case reviewModeConfirm:
		return r.viewConfirm(&b)
	case reviewModeComplete:
		return r.viewComplete(&b)
	}

	return b.String()
}

func (r *Review) viewConfirm(b *strings.Builder) string {
	if r.review == nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(r.err))))
		b.WriteString("\n\n")
		if errors.Is(r.err, apperror.ErrNotFound) {
			b.WriteString(DimStyle.Render("The link is well-formed but its candidate no longer exists."))
			b.WriteString("\n\n")
		}
		b.WriteString(HelpStyle.Render("[enter] Back"))
		return b.String()
	}

	if r.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(r.err))))
		b.WriteString("\n\n")
	}

	fmt.Fprintf(b, "Candidate: %s\n", SelectedStyle.Render(r.review.Candidate.Name))
	if r.review.Interview != nil {
		fmt.Fprintf(b, "Interview: %s (%s, %s)\n",
			r.review.Interview.InterviewerName,
			r.review.Interview.InterviewType.Label(),
			r.review.Interview.InterviewDate.Format("2006-01-02"),
		)
	}
	b.WriteString("\n")

	if r.review.InterviewMissing() {
		b.WriteString(WarningStyle.Render(fmt.Sprintf(
			"Interview %s was not found; its axis fields will be skipped.",
			r.review.Payload.InterviewID.OrZero(),
		)))
		b.WriteString("\n\n")
	}

	changed := autoupdate.CountChanged(r.review.Changes)
	if len(r.review.Changes) == 0 {
		b.WriteString(DimStyle.Render("The link carries no fields to update."))
		b.WriteString("\n\n")
	} else {
		for _, change := range r.review.Changes {
			if change.Unchanged {
				b.WriteString(DimStyle.Render(fmt.Sprintf("  %s: %s (unchanged)", change.Label, change.Proposed)))
			} else {
				fmt.Fprintf(b, "  %s: %s -> %s",
					change.Label,
					DimStyle.Render(change.CurrentText()),
					SuccessStyle.Render(change.Proposed),
				)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "%d of %d fields will change.\n\n", changed, len(r.review.Changes))
	b.WriteString("Apply? (y/n)\n\n")
	b.WriteString(HelpStyle.Render("[y/enter] Apply  [n/esc] Cancel"))

	return b.String()
}

func (r *Review) viewComplete(b *strings.Builder) string {
	if r.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %s", errorText(r.err))))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[enter] Back"))
		return b.String()
	}

	b.WriteString(SuccessStyle.Render("Changes applied!"))
	b.WriteString("\n\n")
	if r.result.InterviewSkipped {
		b.WriteString(WarningStyle.Render("Interview fields were skipped."))
		b.WriteString("\n\n")
	}
	b.WriteString(HelpStyle.Render("[enter] View candidate  [q] Candidates"))

	return b.String()
}
