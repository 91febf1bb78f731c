package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emilianohg/profiler/internal/agent"
	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/autoupdate"
	"github.com/emilianohg/profiler/internal/config"
	"github.com/emilianohg/profiler/internal/models"
	"github.com/emilianohg/profiler/internal/prompt"
)

var applyCmd = &cobra.Command{
	Use:   "apply <url>",
	Short: "Review and apply an auto-update link",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")

		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		if err := reviewAndCommit(cmd.Context(), env, args[0], yes, os.Stdin, os.Stdout); err != nil {
			fail("Error", err)
		}
	},
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Build an auto-update link",
	Long: `Build an auto-update link from flags. Only the flags you pass are put in the
link; pass an empty value (e.g. --tag "") to clear a list.

Example:
  profiler link --candidate c1 --interview i1 --primary builder --score technical_depth=4`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		p, err := payloadFromFlags(cmd)
		if err != nil {
			fail("Error", err)
		}

		cfg, err := config.Load()
		if err != nil {
			fail("Error loading config", err)
		}

		link, err := autoupdate.Encode(cfg.Origin, p)
		if err != nil {
			fail("Error", err)
		}
		fmt.Println(link)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <interview-id>",
	Short: "Ask an AI agent for profile suggestions and review them",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		yes, _ := cmd.Flags().GetBool("yes")
		agentName, _ := cmd.Flags().GetString("agent")

		env := mustOpenEnv(ctx)
		defer env.Close()

		if agentName == "" {
			agentName = env.cfg.DefaultAgent
		}
		ag, err := agent.New(agentName)
		if err != nil {
			fail("Error", err)
		}

		text, err := interviewPrompt(ctx, env, args[0])
		if err != nil {
			fail("Error", err)
		}

		fmt.Printf("Asking %s...\n", ag.Name())
		reply, err := ag.Suggest(ctx, text)
		if err != nil {
			env.log.Error("agent failed", err, zap.String("agent", ag.Name()), zap.String("interview_id", args[0]))
			fail("Error running agent", err)
		}

		link, ok := agent.ExtractApplyURL(reply)
		if !ok {
			env.log.Warn("agent reply had no auto-update link", zap.String("agent", ag.Name()))
			fmt.Println(reply)
			fail("Error", fmt.Errorf("%s did not return an auto-update link", ag.Name()))
		}

		if err := reviewAndCommit(ctx, env, link, yes, os.Stdin, os.Stdout); err != nil {
			fail("Error", err)
		}
	},
}

// reviewAndCommit shows the change-set of link and commits it once approved.
func reviewAndCommit(ctx context.Context, env *env, link string, yes bool, in io.Reader, out io.Writer) error {
	applier := autoupdate.NewApplier(env.store, env.log)

	lookup, err := applier.ProfileMap(ctx)
	if err != nil {
		return err
	}
	review, err := applier.PrepareLink(ctx, link, lookup)
	if err != nil {
		return err
	}

	printReview(out, review)
	if len(review.Changes) == 0 {
		return nil
	}

	if !yes && !confirm(in, out, "\nApply these changes?") {
		fmt.Fprintln(out, "Cancelled, nothing was changed.")
		return nil
	}

	if err := review.Approve(); err != nil {
		return err
	}
	result, err := applier.Commit(ctx, review)
	if err != nil {
		return err
	}
	printResult(out, result)
	return nil
}

func payloadFromFlags(cmd *cobra.Command) (autoupdate.Payload, error) {
	flags := cmd.Flags()
	candidateID, _ := flags.GetString("candidate")
	p := autoupdate.Payload{CandidateID: candidateID}

	if flags.Changed("interview") {
		v, _ := flags.GetString("interview")
		p.InterviewID = autoupdate.Some(v)
	}
	if flags.Changed("primary") {
		v, _ := flags.GetString("primary")
		p.PrimaryProfile = autoupdate.Some(v)
	}
	if flags.Changed("secondary") {
		v, _ := flags.GetStringArray("secondary")
		p.SecondaryProfiles = autoupdate.Some(cleanList(v))
	}
	if flags.Changed("signal") {
		v, _ := flags.GetString("signal")
		p.OverallHireSignal = autoupdate.Some(models.HireSignal(v))
	}
	if flags.Changed("tag") {
		v, _ := flags.GetStringArray("tag")
		p.Tags = autoupdate.Some(cleanList(v))
	}
	if flags.Changed("score") {
		v, _ := flags.GetStringArray("score")
		scores, err := parseScores(v)
		if err != nil {
			return p, apperror.NewInvalidInput(err.Error(), err)
		}
		p.AxisScores = autoupdate.Some(scores)
	}
	if flags.Changed("note") {
		v, _ := flags.GetStringArray("note")
		notes, err := parseNotes(v)
		if err != nil {
			return p, apperror.NewInvalidInput(err.Error(), err)
		}
		p.AxisNotes = autoupdate.Some(notes)
	}

	return p, p.Validate()
}

// interviewPrompt builds the profiling prompt for one interview.
func interviewPrompt(ctx context.Context, env *env, interviewID string) (string, error) {
	iv, err := env.store.Interviews.GetByID(ctx, interviewID)
	if err != nil {
		return "", err
	}
	if iv == nil {
		return "", apperror.NewNotFound("Interview", interviewID)
	}
	candidate, err := env.store.Candidates.GetByID(ctx, iv.CandidateID)
	if err != nil {
		return "", err
	}
	if candidate == nil {
		return "", apperror.NewNotFound("Candidate", iv.CandidateID)
	}
	profiles, err := env.store.Profiles.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return prompt.Interview(env.cfg.Origin, candidate, iv, profiles)
}

func addLinkFlags(cmd *cobra.Command) {
	cmd.Flags().String("candidate", "", "Candidate id (required)")
	cmd.Flags().String("interview", "", "Interview id, required for axis fields")
	cmd.Flags().String("primary", "", "Primary profile id")
	cmd.Flags().StringArray("secondary", nil, "Secondary profile id (repeatable)")
	cmd.Flags().String("signal", "", "Overall hire signal: strong_no, no, neutral, yes, strong_yes")
	cmd.Flags().StringArray("tag", nil, "Tag (repeatable)")
	cmd.Flags().StringArray("score", nil, "Axis score as axis=N (repeatable)")
	cmd.Flags().StringArray("note", nil, "Axis note as axis=text (repeatable)")
	_ = cmd.MarkFlagRequired("candidate")
}

func init() {
	applyCmd.Flags().BoolP("yes", "y", false, "Apply without asking for confirmation")

	addLinkFlags(linkCmd)

	suggestCmd.Flags().String("agent", "", "Agent to use: codex or claude (default from config)")
	suggestCmd.Flags().BoolP("yes", "y", false, "Apply without asking for confirmation")
}
