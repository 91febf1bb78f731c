package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/emilianohg/profiler/internal/apperror"
	"github.com/emilianohg/profiler/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print AI prompts for an interview or a candidate",
}

var promptInterviewCmd = &cobra.Command{
	Use:   "interview <interview-id>",
	Short: "Prompt for profiling one interview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		text, err := interviewPrompt(cmd.Context(), env, args[0])
		if err != nil {
			fail("Error", err)
		}
		emitPrompt(cmd, text)
	},
}

var promptSummaryCmd = &cobra.Command{
	Use:   "summary <candidate-id>",
	Short: "Prompt for summarizing all interviews of a candidate",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustOpenEnv(cmd.Context())
		defer env.Close()

		text, err := summaryPrompt(cmd.Context(), env, args[0])
		if err != nil {
			fail("Error", err)
		}
		emitPrompt(cmd, text)
	},
}

func summaryPrompt(ctx context.Context, env *env, candidateID string) (string, error) {
	candidate, err := env.store.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return "", err
	}
	if candidate == nil {
		return "", apperror.NewNotFound("Candidate", candidateID)
	}
	interviews, err := env.store.Interviews.GetByCandidateID(ctx, candidateID)
	if err != nil {
		return "", err
	}
	profiles, err := env.store.Profiles.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return prompt.CandidateSummary(env.cfg.Origin, candidate, interviews, profiles)
}

// emitPrompt prints text or, with --copy, puts it on the clipboard.
func emitPrompt(cmd *cobra.Command, text string) {
	copyToClipboard, _ := cmd.Flags().GetBool("copy")
	if !copyToClipboard {
		fmt.Print(text)
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		fail("Error copying to clipboard", err)
	}
	fmt.Fprintln(os.Stderr, "Prompt copied to clipboard.")
}

func init() {
	promptCmd.PersistentFlags().BoolP("copy", "c", false, "Copy the prompt to the clipboard instead of printing it")

	promptCmd.AddCommand(promptInterviewCmd)
	promptCmd.AddCommand(promptSummaryCmd)
}
