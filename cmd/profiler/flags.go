package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/models"
)

// parseScores reads "axis=N" pairs.
func parseScores(pairs []string) (map[models.Axis]int, error) {
	scores := make(map[models.Axis]int, len(pairs))
	for _, pair := range pairs {
		axis, value, err := splitAxisPair(pair)
		if err != nil {
			return nil, err
		}
		score, err := strconv.Atoi(value)
		if err != nil || score < models.MinScore || score > models.MaxScore {
			return nil, fmt.Errorf("score for %s must be between %d and %d, got %q", axis, models.MinScore, models.MaxScore, value)
		}
		scores[axis] = score
	}
	return scores, nil
}

// parseNotes reads "axis=text" pairs.
func parseNotes(pairs []string) (map[models.Axis]string, error) {
	notes := make(map[models.Axis]string, len(pairs))
	for _, pair := range pairs {
		axis, value, err := splitAxisPair(pair)
		if err != nil {
			return nil, err
		}
		notes[axis] = value
	}
	return notes, nil
}

func splitAxisPair(pair string) (models.Axis, string, error) {
	key, value, ok := strings.Cut(pair, "=")
	if !ok {
		return "", "", fmt.Errorf("expected axis=value, got %q", pair)
	}
	axis := models.Axis(strings.TrimSpace(key))
	if !axis.Valid() {
		return "", "", fmt.Errorf("unknown axis %q (valid: %s)", key, axisNames())
	}
	return axis, strings.TrimSpace(value), nil
}

func axisNames() string {
	names := make([]string, 0, len(models.Axes))
	for _, axis := range models.Axes {
		names = append(names, string(axis))
	}
	return strings.Join(names, ", ")
}

// cleanList trims values and drops blanks, so a single empty flag value
// means an empty list.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// confirm asks question on out and reads a yes/no answer from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// printReview writes the change-set of r.
func printReview(w io.Writer, r *autoupdate.Review) {
	fmt.Fprintf(w, "Candidate: %s (%s)\n", r.Candidate.Name, r.Candidate.ID)
	if r.Interview != nil {
		fmt.Fprintf(w, "Interview: %s, %s, %s\n",
			r.Interview.InterviewerName,
			r.Interview.InterviewType.Label(),
			r.Interview.InterviewDate.Format("2006-01-02"),
		)
	}
	if r.InterviewMissing() {
		fmt.Fprintf(w, "Warning: interview %s not found, its axis fields will be skipped\n", r.Payload.InterviewID.OrZero())
	}
	fmt.Fprintln(w)

	if len(r.Changes) == 0 {
		fmt.Fprintln(w, "The link carries no fields to update.")
		return
	}
	for _, change := range r.Changes {
		if change.Unchanged {
			fmt.Fprintf(w, "  %s: %s (unchanged)\n", change.Label, change.Proposed)
			continue
		}
		fmt.Fprintf(w, "  %s: %s -> %s\n", change.Label, change.CurrentText(), change.Proposed)
	}
	fmt.Fprintf(w, "\n%d of %d fields will change.\n", autoupdate.CountChanged(r.Changes), len(r.Changes))
}

func printResult(w io.Writer, result *autoupdate.Result) {
	switch {
	case result.CandidateUpdated && result.InterviewUpdated:
		fmt.Fprintln(w, "Updated candidate and interview.")
	case result.CandidateUpdated:
		fmt.Fprintln(w, "Updated candidate.")
	case result.InterviewUpdated:
		fmt.Fprintln(w, "Updated interview.")
	default:
		fmt.Fprintln(w, "Nothing to update.")
	}
	if result.InterviewSkipped {
		fmt.Fprintln(w, "Interview fields were skipped.")
	}
}
