package agent

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Agent sends a prompt to an external AI CLI and returns its reply.
type Agent interface {
	Name() string
	Suggest(ctx context.Context, prompt string) (string, error)
}

// Runner executes a command with stdin and returns stdout.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args []string, stdin string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w\nstderr: %s", name, err, stderr.String())
	}
	return stdout.String(), nil
}

// Names lists the supported agents.
var Names = []string{"codex", "claude"}

func New(agentType string) (Agent, error) {
	return NewWithRunner(agentType, execRunner{})
}

func NewWithRunner(agentType string, runner Runner) (Agent, error) {
	switch agentType {
	case "codex":
		return &CodexAgent{runner: runner}, nil
	case "claude":
		return &ClaudeAgent{runner: runner}, nil
	default:
		return nil, fmt.Errorf("unknown agent type: %s", agentType)
	}
}

type CodexAgent struct {
	runner Runner
}

func (a *CodexAgent) Name() string { return "codex" }

func (a *CodexAgent) Suggest(ctx context.Context, prompt string) (string, error) {
	// codex exec reads the prompt from stdin when given "-"
	return a.runner.Run(ctx, "codex", []string{"exec", "-"}, prompt)
}

type ClaudeAgent struct {
	runner Runner
}

func (a *ClaudeAgent) Name() string { return "claude" }

func (a *ClaudeAgent) Suggest(ctx context.Context, prompt string) (string, error) {
	// claude -p prints a single non-interactive answer
	return a.runner.Run(ctx, "claude", []string{"-p", prompt}, "")
}

// applyURLPattern matches an auto-update link inside free text or markdown.
var applyURLPattern = regexp.MustCompile(`https?://[^\s()<>\[\]"'` + "`" + `]+/apply\?[^\s()<>\[\]"'` + "`" + `]*data=[A-Za-z0-9+/=%_-]+`)

// ExtractApplyURL returns the last auto-update link in reply. Hash-routed
// links ("/#/apply") are rewritten to the plain "/apply" form.
func ExtractApplyURL(reply string) (string, bool) {
	normalized := strings.ReplaceAll(reply, "/#/apply", "/apply")
	matches := applyURLPattern.FindAllString(normalized, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}
