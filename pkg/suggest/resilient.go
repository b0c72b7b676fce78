package suggest

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/githubnext/yamlassist/pkg/parser"
)

// ResilienceConfig bounds how long and how often an advisor is tried
type ResilienceConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

// DefaultResilienceConfig returns the settings used when none are given
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxAttempts: 2,
		RetryDelay:  200 * time.Millisecond,
		Timeout:     5 * time.Second,
	}
}

// ResilientAdvisor wraps an Advisor with a timeout and retries. Panics in the wrapped
// advisor are returned as errors.
type ResilientAdvisor struct {
	inner  Advisor
	config ResilienceConfig
}

// NewResilientAdvisor wraps inner. Zero fields in config take their default values.
func NewResilientAdvisor(inner Advisor, config ResilienceConfig) *ResilientAdvisor {
	defaults := DefaultResilienceConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = defaults.RetryDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &ResilientAdvisor{inner: inner, config: config}
}

// Advise implements Advisor
func (a *ResilientAdvisor) Advise(ctx context.Context, text string, value parser.Value) ([]Suggestion, error) {
	r := retry.New[[]Suggestion](retry.Config{
		MaxAttempts:   a.config.MaxAttempts,
		InitialDelay:  a.config.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[[]Suggestion](timeout.Config{
		DefaultTimeout: a.config.Timeout,
	})

	return t.Execute(ctx, a.config.Timeout, func(ctx context.Context) ([]Suggestion, error) {
		return r.Do(ctx, func(ctx context.Context) ([]Suggestion, error) {
			return safeAdvise(ctx, a.inner, text, value)
		})
	})
}

func safeAdvise(ctx context.Context, advisor Advisor, text string, value parser.Value) (suggestions []Suggestion, err error) {
	defer func() {
		if r := recover(); r != nil {
			suggestions = nil
			err = fmt.Errorf("advisor panicked: %v", r)
		}
	}()
	return advisor.Advise(ctx, text, value)
}
