// Package prompt renders the interview and candidate-summary requests handed
// to an external AI tool. Both prompts end with instructions for answering
// with an auto-update link.
package prompt

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/models"
)

var scoreDescriptions = map[int]string{
	1: "Poor - Significant concerns",
	2: "Below Expectations - Room for improvement",
	3: "Meets Expectations - Satisfactory",
	4: "Above Expectations - Strong performance",
	5: "Exceptional - Outstanding performance",
}

var shortScoreDescriptions = map[int]string{
	1: "Poor",
	2: "Below Expectations",
	3: "Meets Expectations",
	4: "Above Expectations",
	5: "Exceptional",
}

const dateLayout = "January 2, 2006"

// Interview builds the analysis request for a single interview.
func Interview(origin string, candidate *models.Candidate, iv *models.Interview, profiles []models.Profile) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Interview Analysis Request\n\n")
	sb.WriteString("Please analyze this interview feedback and provide insights on the candidate's strengths, areas for development, and overall fit.\n\n")
	sb.WriteString("---\n\n")
	sb.WriteString("## Interview Details\n\n")
	sb.WriteString(fmt.Sprintf("**Candidate:** %s\n", candidate.Name))
	sb.WriteString(fmt.Sprintf("**Interviewer:** %s\n", iv.InterviewerName))
	sb.WriteString(fmt.Sprintf("**Date:** %s\n", iv.InterviewDate.Format(dateLayout)))
	sb.WriteString(fmt.Sprintf("**Interview Type:** %s\n", iv.InterviewType.Label()))
	sb.WriteString(fmt.Sprintf("**Overall Signal:** %s\n\n", iv.HireSignal.Label()))
	sb.WriteString("---\n\n")
	sb.WriteString("## Evaluation Scores\n\n")

	var unscored []models.Axis
	for _, axis := range models.Axes {
		sb.WriteString(fmt.Sprintf("### %s\n", axis.Label()))
		if score, ok := iv.Score(axis); ok {
			sb.WriteString(fmt.Sprintf("**Score:** %d/5 (%s)\n", score, scoreDescriptions[score]))
		} else {
			sb.WriteString("**Score:** _Not scored_\n")
			unscored = append(unscored, axis)
		}
		if note := iv.AxisNotes[axis]; note != "" {
			sb.WriteString(fmt.Sprintf("**Notes:** %s\n", note))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## General Interview Notes\n\n")
	if iv.NotesRaw != "" {
		sb.WriteString(iv.NotesRaw + "\n\n")
	} else {
		sb.WriteString("_No additional notes provided._\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Analysis Requested\n\n")
	sb.WriteString("Based on the above interview feedback, please provide:\n\n")

	n := 1
	item := func(text string) {
		sb.WriteString(fmt.Sprintf("%d. %s\n", n, text))
		n++
	}
	item("**Key Strengths:** What does this candidate excel at?")
	item("**Areas for Development:** What skills or behaviors need improvement?")
	item("**Red Flags:** Are there any concerning patterns or signals?")
	item("**Role Fit Assessment:** How well does this candidate align with typical expectations for this role?")
	item("**Suggested Follow-up Questions:** What should future interviewers explore?")
	item("**Profile Recommendation:** Based on the interview feedback, which of these profiles best fits this candidate? Recommend a primary profile and optionally 1-2 secondary profiles:")
	writeProfiles(&sb, profiles)
	if len(unscored) > 0 {
		item("**Suggested Axis Scores:** Based on the interview notes and feedback, suggest appropriate scores (1-5) for the following unscored axes:")
		for _, axis := range unscored {
			sb.WriteString(fmt.Sprintf("   - %s (1=Poor, 3=Meets Expectations, 5=Exceptional)\n", axis.Label()))
		}
	}
	item("**Summary Recommendation:** A brief 2-3 sentence overall assessment.")

	primary, secondary := exampleProfiles(profiles)
	example := autoupdate.Payload{
		CandidateID:       candidate.ID,
		InterviewID:       autoupdate.Some(iv.ID),
		PrimaryProfile:    autoupdate.Some(primary),
		SecondaryProfiles: autoupdate.Some([]string{secondary}),
		AxisScores: autoupdate.Some(map[models.Axis]int{
			models.AxisTechnicalDepth:             4,
			models.AxisCollaborationCommunication: 5,
		}),
		AxisNotes: autoupdate.Some(map[models.Axis]string{
			models.AxisTechnicalDepth: "Strong problem-solving skills",
		}),
	}

	fields := []string{
		fmt.Sprintf("- `candidateId`: %q (required, do not change)", candidate.ID),
		fmt.Sprintf("- `interviewId`: %q (required for interview-specific updates)", iv.ID),
		"- `primary_profile`: one profile id from the list above",
		"- `secondary_profiles`: [\"id1\", \"id2\"] (optional array of profile ids)",
		"- `axis_scores`: { \"technical_depth\": 1-5, \"learning_growth\": 1-5, ... } (partial updates allowed)",
		"- `axis_notes`: { \"technical_depth\": \"note text\", ... } (optional notes per axis)",
	}
	if err := writeAutoUpdate(&sb, origin, "this interview", fields, example); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// CandidateSummary builds the request to reconcile every interview of a
// candidate into one recommendation.
func CandidateSummary(origin string, candidate *models.Candidate, interviews []models.Interview, profiles []models.Profile) (string, error) {
	var sb strings.Builder
	conflict := DetectSignalConflict(interviews)

	sb.WriteString("# Candidate Summary Analysis Request\n\n")
	sb.WriteString("Please analyze the complete interview feedback for this candidate and provide a comprehensive hiring recommendation.\n\n")
	sb.WriteString("---\n\n")
	sb.WriteString("## Candidate Overview\n\n")
	sb.WriteString(fmt.Sprintf("**Name:** %s\n", candidate.Name))
	if len(candidate.Tags) > 0 {
		sb.WriteString(fmt.Sprintf("**Tags:** %s\n", strings.Join(candidate.Tags, ", ")))
	}
	if candidate.OverallHireSignal != nil {
		sb.WriteString(fmt.Sprintf("**Current Overall Signal:** %s\n", candidate.OverallHireSignal.Label()))
	}
	sb.WriteString(fmt.Sprintf("**Total Interviews:** %d\n\n", len(interviews)))

	if conflict.Level != ConflictNone {
		sb.WriteString("---\n\n")
		sb.WriteString("## ⚠️ Interview Signal Conflict Detected\n\n")
		sb.WriteString(conflict.Description + "\n\n")
		sb.WriteString("**Individual signals:**\n")
		for _, iv := range interviews {
			sb.WriteString(fmt.Sprintf("- %s (%s): **%s**\n", iv.InterviewerName, iv.InterviewType.Label(), iv.HireSignal.Label()))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Aggregate Evaluation Scores\n\n")
	for _, axis := range models.Axes {
		stats := ComputeAxisStats(interviews, axis)
		sb.WriteString(fmt.Sprintf("### %s\n", axis.Label()))
		if stats.Scored == 0 {
			sb.WriteString("**Average:** _Not scored_\n\n")
			continue
		}

		sb.WriteString(fmt.Sprintf("**Average:** %s/5 (%s)\n", formatAverage(stats.Average), shortScoreDescriptions[int(math.Round(stats.Average))]))
		variance := ""
		if stats.HighVariance() {
			variance = " ⚠️ HIGH VARIANCE"
		}
		sb.WriteString(fmt.Sprintf("**Range:** %d - %d%s\n", stats.Min, stats.Max, variance))
		if stats.HighVariance() {
			sb.WriteString("**Individual scores:**\n")
			for _, iv := range interviews {
				if score, ok := iv.Score(axis); ok {
					sb.WriteString(fmt.Sprintf("  - %s: %d/5\n", iv.InterviewerName, score))
				}
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Individual Interview Details\n\n")
	for i, iv := range interviews {
		sb.WriteString(fmt.Sprintf("### Interview %d: %s\n", i+1, iv.InterviewerName))
		sb.WriteString(fmt.Sprintf("**Date:** %s\n", iv.InterviewDate.Format(dateLayout)))
		sb.WriteString(fmt.Sprintf("**Type:** %s\n", iv.InterviewType.Label()))
		sb.WriteString(fmt.Sprintf("**Signal:** %s\n\n", iv.HireSignal.Label()))

		sb.WriteString("**Scores:**\n")
		for _, axis := range models.Axes {
			score := "_Not scored_"
			if s, ok := iv.Score(axis); ok {
				score = fmt.Sprintf("%d/5", s)
			}
			line := fmt.Sprintf("- %s: %s", axis.Label(), score)
			if note := iv.AxisNotes[axis]; note != "" {
				line += fmt.Sprintf(" (%q)", note)
			}
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n")

		if iv.NotesRaw != "" {
			sb.WriteString("**Notes:**\n")
			sb.WriteString(iv.NotesRaw + "\n\n")
		}
	}

	sb.WriteString("---\n\n")
	sb.WriteString("## Analysis Requested\n\n")
	sb.WriteString("Based on all interview feedback above, please provide:\n\n")
	sb.WriteString("1. **Consensus Strengths:** What do multiple interviewers agree the candidate excels at?\n")
	sb.WriteString("2. **Consensus Concerns:** What areas of concern appear across multiple interviews?\n")
	sb.WriteString("3. **Conflicting Assessments:** Where do interviewers disagree, and what might explain the differences?\n")
	sb.WriteString("4. **Signal Reconciliation:** How should the different hire signals be weighted and reconciled?\n")
	sb.WriteString("5. **Role Fit Summary:** Based on the aggregate feedback, what types of roles/teams would this candidate thrive in?\n")
	sb.WriteString("6. **Risk Assessment:** What are the key risks of hiring this candidate?\n")
	sb.WriteString("7. **Profile Recommendation:** Based on all interviews, which profile best fits this candidate? Recommend a primary profile and optionally 1-2 secondary profiles:\n")
	writeProfiles(&sb, profiles)
	sb.WriteString("8. **Overall Hire Signal:** Recommend a final hire signal (Strong No / No / Neutral / Yes / Strong Yes) with brief justification.\n")
	sb.WriteString("9. **Final Recommendation:** Provide a clear hire/no-hire recommendation with confidence level and key reasoning.\n")

	primary, secondary := exampleProfiles(profiles)
	example := autoupdate.Payload{
		CandidateID:       candidate.ID,
		PrimaryProfile:    autoupdate.Some(primary),
		SecondaryProfiles: autoupdate.Some([]string{secondary}),
		OverallHireSignal: autoupdate.Some(models.HireSignalYes),
		Tags:              autoupdate.Some(append([]string{}, candidate.Tags...)),
	}
	signals := make([]string, 0, len(models.HireSignals))
	for _, s := range models.HireSignals {
		signals = append(signals, fmt.Sprintf("%q", s))
	}
	fields := []string{
		fmt.Sprintf("- `candidateId`: %q (required, do not change)", candidate.ID),
		"- `primary_profile`: one profile id from the list above",
		"- `secondary_profiles`: [\"id1\", \"id2\"] (optional array of profile ids)",
		fmt.Sprintf("- `overall_hire_signal`: %s", strings.Join(signals, " | ")),
		"- `tags`: [\"tag\", ...] (replaces the whole tag list)",
	}
	if err := writeAutoUpdate(&sb, origin, "this candidate", fields, example); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func writeProfiles(sb *strings.Builder, profiles []models.Profile) {
	for _, p := range profiles {
		line := fmt.Sprintf("   - **%s** (id: `%s`)", p.Name, p.ID)
		if p.Description != "" {
			line += ": " + p.Description
		}
		sb.WriteString(line + "\n")
	}
}

func exampleProfiles(profiles []models.Profile) (string, string) {
	primary, secondary := "builder", "specialist"
	if len(profiles) > 0 {
		primary = profiles[0].ID
	}
	if len(profiles) > 1 {
		secondary = profiles[1].ID
	}
	return primary, secondary
}

func writeAutoUpdate(sb *strings.Builder, origin, target string, fields []string, example autoupdate.Payload) error {
	link, err := autoupdate.Encode(origin, example)
	if err != nil {
		return fmt.Errorf("failed to encode example link: %w", err)
	}
	body, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render example payload: %w", err)
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("## Auto-Update URL\n\n")
	sb.WriteString(fmt.Sprintf("After your analysis, generate a URL that applies your recommendations to %s:\n\n", target))
	sb.WriteString(fmt.Sprintf("**Format:** `%s%s?%s={BASE64_JSON}`\n\n", strings.TrimRight(origin, "/"), autoupdate.ApplyPath, autoupdate.DataParam))
	sb.WriteString("**JSON payload fields:**\n")
	for _, f := range fields {
		sb.WriteString(f + "\n")
	}
	sb.WriteString("\n**Instructions:**\n")
	sb.WriteString("1. Create a JSON object with your recommendations\n")
	sb.WriteString("2. Base64-encode the JSON string (standard alphabet, with padding)\n")
	sb.WriteString("3. Append it to the URL as the `data` parameter\n\n")
	sb.WriteString("**Example:**\n")
	sb.WriteString("```json\n")
	sb.Write(body)
	sb.WriteString("\n```\n\n")
	sb.WriteString(fmt.Sprintf("[Click to apply recommendations](%s)\n", link))
	return nil
}

func formatAverage(avg float64) string {
	rounded := math.Round(avg*10) / 10
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0f", rounded)
	}
	return fmt.Sprintf("%.1f", rounded)
}
