package autoupdate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/emilianohg/profiler/internal/models"
)

const (
	NotSet = "Not set"
	None   = "None"
)

// ProfileLookup resolves profile ids to display names.
type ProfileLookup interface {
	ProfileName(id string) (string, bool)
}

// ProfileMap resolves by id, falling back to slug.
type ProfileMap map[string]string

func NewProfileMap(profiles []models.Profile) ProfileMap {
	m := make(ProfileMap, len(profiles)*2)
	for _, p := range profiles {
		if _, taken := m[p.Slug]; !taken {
			m[p.Slug] = p.Name
		}
	}
	for _, p := range profiles {
		m[p.ID] = p.Name
	}
	return m
}

func (m ProfileMap) ProfileName(id string) (string, bool) {
	name, ok := m[id]
	return name, ok
}

// Change is one reviewable field change. Current is nil when the field has
// no value yet.
type Change struct {
	Field     string
	Label     string
	Current   *string
	Proposed  string
	Unchanged bool
}

// CurrentText renders Current with the "Not set" marker.
func (c Change) CurrentText() string {
	if c.Current == nil {
		return NotSet
	}
	return *c.Current
}

// ComputeChanges lists every field present in p against the stored state.
// interview may be nil; axis fields are only listed when p names an
// interview that was found and belongs to candidate.
func ComputeChanges(p Payload, candidate *models.Candidate, interview *models.Interview, lookup ProfileLookup) []Change {
	if candidate == nil {
		return nil
	}
	if lookup == nil {
		lookup = ProfileMap{}
	}

	var changes []Change

	if proposed, ok := p.PrimaryProfile.Get(); ok {
		current := ""
		if candidate.PrimaryProfile != nil {
			current = *candidate.PrimaryProfile
		}
		changes = append(changes, Change{
			Field:     keyPrimaryProfile,
			Label:     "Primary Profile",
			Current:   optionalText(profileName(current, lookup)),
			Proposed:  orNone(profileName(proposed, lookup)),
			Unchanged: current == proposed,
		})
	}

	if proposed, ok := p.SecondaryProfiles.Get(); ok {
		changes = append(changes, Change{
			Field:     keySecondaryProfiles,
			Label:     "Secondary Profiles",
			Current:   optionalText(profileNames(candidate.SecondaryProfiles, lookup)),
			Proposed:  orNone(profileNames(proposed, lookup)),
			Unchanged: slices.Equal(candidate.SecondaryProfiles, proposed),
		})
	}

	if proposed, ok := p.OverallHireSignal.Get(); ok {
		var current models.HireSignal
		if candidate.OverallHireSignal != nil {
			current = *candidate.OverallHireSignal
		}
		changes = append(changes, Change{
			Field:     keyOverallHireSignal,
			Label:     "Overall Hire Signal",
			Current:   optionalText(signalLabel(current)),
			Proposed:  orNone(signalLabel(proposed)),
			Unchanged: current == proposed,
		})
	}

	if proposed, ok := p.Tags.Get(); ok {
		changes = append(changes, Change{
			Field:     keyTags,
			Label:     "Tags",
			Current:   optionalText(strings.Join(candidate.Tags, ", ")),
			Proposed:  orNone(strings.Join(proposed, ", ")),
			Unchanged: slices.Equal(candidate.Tags, proposed),
		})
	}

	if !interviewInScope(p, candidate, interview) {
		return changes
	}

	if scores, ok := p.AxisScores.Get(); ok {
		for _, axis := range models.Axes {
			proposed, present := scores[axis]
			if !present {
				continue
			}
			current, scored := interview.Score(axis)
			var currentText *string
			if scored {
				currentText = optionalText(formatScore(current))
			}
			changes = append(changes, Change{
				Field:     keyAxisScores + "." + string(axis),
				Label:     axis.Label() + " Score",
				Current:   currentText,
				Proposed:  formatScore(proposed),
				Unchanged: scored && current == proposed,
			})
		}
	}

	if notes, ok := p.AxisNotes.Get(); ok {
		for _, axis := range models.Axes {
			proposed, present := notes[axis]
			if !present {
				continue
			}
			current := interview.AxisNotes[axis]
			changes = append(changes, Change{
				Field:     keyAxisNotes + "." + string(axis),
				Label:     axis.Label() + " Notes",
				Current:   optionalText(current),
				Proposed:  orNone(proposed),
				Unchanged: current == proposed,
			})
		}
	}

	return changes
}

// CountChanged returns how many entries would actually modify a value.
func CountChanged(changes []Change) int {
	n := 0
	for _, c := range changes {
		if !c.Unchanged {
			n++
		}
	}
	return n
}

func interviewInScope(p Payload, candidate *models.Candidate, interview *models.Interview) bool {
	id, ok := p.InterviewID.Get()
	if !ok || interview == nil {
		return false
	}
	return interview.ID == id && interview.CandidateID == candidate.ID
}

func profileName(id string, lookup ProfileLookup) string {
	if id == "" {
		return ""
	}
	if name, ok := lookup.ProfileName(id); ok {
		return name
	}
	return id
}

func profileNames(ids []string, lookup ProfileLookup) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, profileName(id, lookup))
	}
	return strings.Join(names, ", ")
}

func signalLabel(s models.HireSignal) string {
	if s == "" {
		return ""
	}
	return s.Label()
}

func formatScore(score int) string {
	return fmt.Sprintf("%d/%d", score, models.MaxScore)
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orNone(s string) string {
	if s == "" {
		return None
	}
	return s
}
