package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/prompt"
)

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Manage candidates",
}

var candidateAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tags, _ := cmd.Flags().GetStringArray("tag")

		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		c, err := env.store.Candidates.Create(cmd.Context(), models.CandidateInput{Name: args[0], Tags: cleanList(tags)})
		if err != nil {
			fail("Error adding candidate", err)
		}
		fmt.Printf("Created candidate %s (%s)\n", c.Name, c.ID)
	},
}

var candidateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates, most recently updated first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		candidates, err := env.store.Candidates.GetAll(ctx)
		if err != nil {
			fail("Error listing candidates", err)
		}
		if len(candidates) == 0 {
			fmt.Println("No candidates yet.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tINTERVIEWS\tSIGNAL\tTAGS\tUPDATED")
		for _, c := range candidates {
			count, err := env.store.Interviews.CountByCandidate(ctx, c.ID)
			if err != nil {
				fail("Error listing candidates", err)
			}
			signal := "-"
			if c.OverallHireSignal != nil && *c.OverallHireSignal != "" {
				signal = c.OverallHireSignal.Label()
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				c.ID, c.Name, count, signal, strings.Join(c.Tags, ","), c.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

var candidateDeleteCmd = &cobra.Command{
	Use:   "delete <candidate-id>",
	Short: "Delete a candidate and all of its interviews",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		ctx := cmd.Context()

		env := mustOpenEnv(ctx)
		defer env.Close()

		c, err := env.store.Candidates.GetByID(ctx, args[0])
		if err != nil {
			fail("Error", err)
		}
		if c == nil {
			fail("Error", apperror.NewNotFound("Candidate", args[0]))
		}
		if !yes && !confirm(os.Stdin, os.Stdout, fmt.Sprintf("Delete %s and all of their interviews?", c.Name)) {
			return
		}
		if err := env.store.Candidates.Delete(ctx, c.ID); err != nil {
			fail("Error deleting candidate", err)
		}
		fmt.Printf("Deleted candidate %s\n", c.Name)
	},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Manage interviews",
}

var interviewAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an interview for a candidate",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		in, err := interviewInputFromFlags(cmd)
		if err != nil {
			fail("Error", err)
		}

		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		iv, err := env.store.Interviews.Create(cmd.Context(), in)
		if err != nil {
			fail("Error adding interview", err)
		}
		fmt.Printf("Created interview %s\n", iv.ID)
	},
}

var interviewListCmd = &cobra.Command{
	Use:   "list <candidate-id>",
	Short: "List the interviews of a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		interviews, err := env.store.Interviews.GetByCandidateID(ctx, args[0])
		if err != nil {
			fail("Error listing interviews", err)
		}
		if len(interviews) == 0 {
			fmt.Println("No interviews.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tINTERVIEWER\tTYPE\tSIGNAL")
		for _, iv := range interviews {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				iv.ID, iv.InterviewDate.Format("2006-01-02"), iv.InterviewerName, iv.InterviewType.Label(), iv.HireSignal.Label())
		}
		w.Flush()
	},
}

var interviewCompareCmd = &cobra.Command{
	Use:   "compare <candidate-id>",
	Short: "Compare the axis scores of a candidate's interviews side by side",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		if err := compareInterviews(ctx, env, args[0], os.Stdout); err != nil {
			fail("Error comparing interviews", err)
		}
	},
}

// compareInterviews writes one row per axis with the score of every
// interview, the average and the range. Axes whose scores are 2 or more
// apart are flagged.
func compareInterviews(ctx context.Context, env *env, candidateID string, out io.Writer) error {
	candidate, err := env.store.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return apperror.NewNotFound("Candidate", candidateID)
	}
	interviews, err := env.store.Interviews.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return err
	}
	if len(interviews) < 2 {
		return apperror.NewInvalidInput("need at least two interviews to compare", nil)
	}

	fmt.Fprintf(out, "Candidate: %s\n", candidate.Name)
	for i, iv := range interviews {
		fmt.Fprintf(out, "  #%d %s, %s, %s, %s\n",
			i+1, iv.InterviewerName, iv.InterviewType.Label(), iv.InterviewDate.Format("2006-01-02"), iv.HireSignal.Label())
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := "AXIS"
	for i := range interviews {
		header += fmt.Sprintf("\t#%d", i+1)
	}
	fmt.Fprintln(w, header+"\tAVG\tRANGE\t")
	for _, row := range prompt.CompareInterviews(interviews) {
		line := row.Axis.Label()
		for _, score := range row.Scores {
			if score == 0 {
				line += "\t-"
				continue
			}
			line += fmt.Sprintf("\t%d", score)
		}
		switch {
		case row.Stats.Scored == 0:
			line += "\t-\t-\t"
		case row.Stats.HighVariance():
			line += fmt.Sprintf("\t%.1f\t%d-%d\thigh variance", row.Stats.Average, row.Stats.Min, row.Stats.Max)
		default:
			line += fmt.Sprintf("\t%.1f\t%d-%d\t", row.Stats.Average, row.Stats.Min, row.Stats.Max)
		}
		fmt.Fprintln(w, line)
	}
	return w.Flush()
}

var interviewDeleteCmd = &cobra.Command{
	Use:   "delete <interview-id>",
	Short: "Delete an interview (a candidate keeps at least one)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		iv, err := env.store.Interviews.GetByID(ctx, args[0])
		if err != nil {
			fail("Error", err)
		}
		if iv == nil {
			fail("Error", apperror.NewNotFound("Interview", args[0]))
		}
		if err := env.store.Interviews.Delete(ctx, iv.ID, iv.CandidateID); err != nil {
			fail("Error deleting interview", err)
		}
		fmt.Printf("Deleted interview %s\n", iv.ID)
	},
}

func interviewInputFromFlags(cmd *cobra.Command) (models.InterviewInput, error) {
	flags := cmd.Flags()
	candidateID, _ := flags.GetString("candidate")
	interviewer, _ := flags.GetString("interviewer")
	date, _ := flags.GetString("date")
	kind, _ := flags.GetString("type")
	signal, _ := flags.GetString("signal")
	notes, _ := flags.GetString("notes")
	scorePairs, _ := flags.GetStringArray("score")
	notePairs, _ := flags.GetStringArray("note")

	in := models.InterviewInput{
		CandidateID:     candidateID,
		InterviewerName: strings.TrimSpace(interviewer),
		InterviewType:   models.InterviewType(kind),
		HireSignal:      models.HireSignal(signal),
		NotesRaw:        notes,
	}

	if date == "" {
		now := time.Now()
		in.InterviewDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return in, apperror.NewInvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
		}
		in.InterviewDate = d
	}

	var err error
	if in.AxisScores, err = parseScores(scorePairs); err != nil {
		return in, apperror.NewInvalidInput(err.Error(), err)
	}
	if in.AxisNotes, err = parseNotes(notePairs); err != nil {
		return in, apperror.NewInvalidInput(err.Error(), err)
	}
	return in, nil
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		env := mustOpenEnv(ctx)
		defer env.Close()

		profiles, err := env.store.Profiles.GetAll(ctx)
		if err != nil {
			fail("Error listing profiles", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSLUG\tNAME\tDESCRIPTION")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Slug, p.Name, p.Description)
		}
		w.Flush()
	},
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, _ := cmd.Flags().GetString("description")

		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		p, err := env.store.Profiles.Create(cmd.Context(), models.ProfileInput{Name: args[0], Description: description})
		if err != nil {
			fail("Error adding profile", err)
		}
		fmt.Printf("Created profile %s (id %s, slug %s)\n", p.Name, p.ID, p.Slug)
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <id-or-slug>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		ctx := cmd.Context()

		env := mustOpenEnv(ctx)
		defer env.Close()

		p, err := findProfile(ctx, env, args[0])
		if err != nil {
			fail("Error", err)
		}

		inUse, err := env.store.Profiles.IsInUse(ctx, p.ID)
		if err != nil {
			fail("Error", err)
		}
		question := fmt.Sprintf("Delete profile %s?", p.Name)
		if inUse {
			question = fmt.Sprintf("Profile %s is assigned to candidates or interviews, which will show its id instead. Delete anyway?", p.Name)
		}
		if !yes && !confirm(os.Stdin, os.Stdout, question) {
			return
		}

		if err := env.store.Profiles.Delete(ctx, p.ID); err != nil {
			fail("Error deleting profile", err)
		}
		fmt.Printf("Deleted profile %s\n", p.Name)
	},
}

func findProfile(ctx context.Context, env *env, ref string) (*models.Profile, error) {
	p, err := env.store.Profiles.GetByID(ctx, ref)
	if err != nil || p != nil {
		return p, err
	}
	p, err = env.store.Profiles.GetBySlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFound("Profile", ref)
	}
	return p, nil
}

func init() {
	candidateAddCmd.Flags().StringArray("tag", nil, "Tag (repeatable)")
	candidateDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	candidateCmd.AddCommand(candidateAddCmd)
	candidateCmd.AddCommand(candidateListCmd)
	candidateCmd.AddCommand(candidateDeleteCmd)

	interviewAddCmd.Flags().String("candidate", "", "Candidate id (required)")
	interviewAddCmd.Flags().String("interviewer", "", "Interviewer name (required)")
	interviewAddCmd.Flags().String("date", "", "Interview date as YYYY-MM-DD (default today)")
	interviewAddCmd.Flags().String("type", string(models.InterviewTypeTechnical), "technical, system_design, culture, manager, founder or other")
	interviewAddCmd.Flags().String("signal", "", "Hire signal: strong_no, no, neutral, yes, strong_yes (required)")
	interviewAddCmd.Flags().String("notes", "", "Raw interview notes")
	interviewAddCmd.Flags().StringArray("score", nil, "Axis score as axis=N (repeatable)")
	interviewAddCmd.Flags().StringArray("note", nil, "Axis note as axis=text (repeatable)")
	_ = interviewAddCmd.MarkFlagRequired("candidate")
	_ = interviewAddCmd.MarkFlagRequired("interviewer")
	_ = interviewAddCmd.MarkFlagRequired("signal")

	interviewCmd.AddCommand(interviewAddCmd)
	interviewCmd.AddCommand(interviewListCmd)
	interviewCmd.AddCommand(interviewCompareCmd)
	interviewCmd.AddCommand(interviewDeleteCmd)

	profileAddCmd.Flags().String("description", "", "What the profile describes")
	profileDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileDeleteCmd)
}
