package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, name string, args []string, stdin string) (string, error) {
	ret := m.Called(ctx, name, args, stdin)
	return ret.String(0), ret.Error(1)
}

func TestCodexPipesPromptThroughStdin(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.Anything, "codex", []string{"exec", "-"}, "analyze").Return("reply", nil)

	a, err := NewWithRunner("codex", runner)
	require.NoError(t, err)

	out, err := a.Suggest(context.Background(), "analyze")
	require.NoError(t, err)
	assert.Equal(t, "reply", out)
	assert.Equal(t, "codex", a.Name())
	runner.AssertExpectations(t)
}

func TestClaudePassesPromptAsArgument(t *testing.T) {
	runner := new(mockRunner)
	runner.On("Run", mock.Anything, "claude", []string{"-p", "analyze"}, "").Return("", errors.New("not installed"))

	a, err := NewWithRunner("claude", runner)
	require.NoError(t, err)

	_, err = a.Suggest(context.Background(), "analyze")
	assert.EqualError(t, err, "not installed")
	runner.AssertExpectations(t)
}

func TestUnknownAgent(t *testing.T) {
	_, err := New("gpt")
	assert.EqualError(t, err, "unknown agent type: gpt")
}

func TestExtractApplyURL(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
		found bool
	}{
		{
			name:  "markdown link",
			reply: "Done.\n\n[Click to apply recommendations](http://localhost:5173/apply?data=eyJjIjoxfQ==)\n",
			want:  "http://localhost:5173/apply?data=eyJjIjoxfQ==",
			found: true,
		},
		{
			name:  "hash route",
			reply: "Use https://profiler.local/#/apply?data=ab+c/d= to apply",
			want:  "https://profiler.local/apply?data=ab+c/d=",
			found: true,
		},
		{
			name:  "last link wins",
			reply: "example http://x/apply?data=AAAA then final http://x/apply?data=BBBB",
			want:  "http://x/apply?data=BBBB",
			found: true,
		},
		{
			name:  "no link",
			reply: "I could not decide on a profile.",
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractApplyURL(tt.reply)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
