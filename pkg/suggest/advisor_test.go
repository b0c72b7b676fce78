package suggest

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/githubnext/yamlassist/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicAdvisorQuotedPort(t *testing.T) {
	suggestions, err := HeuristicAdvisor{}.Advise(context.Background(), `port: "8080"`, parser.Null())
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	s := suggestions[0]
	assert.Equal(t, Logical, s.Kind)
	assert.Equal(t, SeverityWarning, s.Severity)
	assert.Equal(t, 1, s.Line)
	require.NotNil(t, s.ImprovedCode)
	assert.Equal(t, "port: 8080", *s.ImprovedCode)
}

func TestHeuristicAdvisorReplacesEveryQuotedPort(t *testing.T) {
	text := "a:\n  port: \"80\"\nb:\n  port: \"443\"\n"
	suggestions, err := HeuristicAdvisor{}.Advise(context.Background(), text, parser.Null())
	require.NoError(t, err)

	require.Len(t, suggestions, 1)
	assert.Equal(t, 2, suggestions[0].Line)
	assert.Equal(t, 3, suggestions[0].Column)
	assert.Equal(t, "a:\n  port: 80\nb:\n  port: 443\n", *suggestions[0].ImprovedCode)
}

func TestHeuristicAdvisorSecrets(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		improved string
	}{
		{
			name:     "quoted password",
			text:     "user: admin\npassword: \"hunter2\"\n",
			improved: "user: admin\npassword: \"${PASSWORD_FROM_ENV}\"\n",
		},
		{
			name:     "only the first match is replaced",
			text:     "Secret: \"a\"\nsecret: \"b\"\n",
			improved: "Secret: \"${SECRET_FROM_ENV}\"\nsecret: \"b\"\n",
		},
		{
			name: "unquoted value has no replacement",
			text: "db_password: hunter2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestions, err := HeuristicAdvisor{}.Advise(context.Background(), tt.text, parser.Null())
			require.NoError(t, err)
			security := byKind(suggestions, Security)
			require.Len(t, security, 1)
			assert.Equal(t, SeverityWarning, security[0].Severity)
			if tt.improved == "" {
				assert.Nil(t, security[0].ImprovedCode)
				return
			}
			require.NotNil(t, security[0].ImprovedCode)
			assert.Equal(t, tt.improved, *security[0].ImprovedCode)
		})
	}
}

func TestHeuristicAdvisorNothingToReport(t *testing.T) {
	suggestions, err := HeuristicAdvisor{}.Advise(context.Background(), "port: 8080\n", parser.Null())
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestHeuristicAdvisorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HeuristicAdvisor{}.Advise(ctx, `port: "1"`, parser.Null())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResilientAdvisorRetries(t *testing.T) {
	var calls atomic.Int32
	flaky := AdvisorFunc(func(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("temporary failure")
		}
		return []Suggestion{{Kind: Logical, Severity: SeverityInfo, Message: "ok"}}, nil
	})

	advisor := NewResilientAdvisor(flaky, ResilienceConfig{MaxAttempts: 3, RetryDelay: time.Millisecond, Timeout: time.Second})
	suggestions, err := advisor.Advise(context.Background(), "a: 1", parser.Null())

	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestResilientAdvisorTimeout(t *testing.T) {
	slow := AdvisorFunc(func(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return []Suggestion{{Kind: Logical}}, nil
		}
	})

	advisor := NewResilientAdvisor(slow, ResilienceConfig{MaxAttempts: 1, RetryDelay: time.Millisecond, Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := advisor.Advise(context.Background(), "a: 1", parser.Null())

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestResilientAdvisorRecoversPanics(t *testing.T) {
	panicky := AdvisorFunc(func(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
		panic("boom")
	})

	advisor := NewResilientAdvisor(panicky, ResilienceConfig{MaxAttempts: 1, Timeout: time.Second})
	suggestions, err := advisor.Advise(context.Background(), "a: 1", parser.Null())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, suggestions)
}

func TestNewResilientAdvisorDefaults(t *testing.T) {
	advisor := NewResilientAdvisor(HeuristicAdvisor{}, ResilienceConfig{})
	assert.Equal(t, DefaultResilienceConfig(), advisor.config)
}
