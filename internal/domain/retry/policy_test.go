package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"monarch-server/relay-api/internal/domain/retry"
)

func TestPolicy_CalculateDelay(t *testing.T) {
	tests := []struct {
		name     string
		policy   retry.Policy
		attempt  int
		expected time.Duration
	}{
		{
			name: "fixed backoff - attempt 1",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:  1,
			expected: 100 * time.Millisecond,
		},
		{
			name: "fixed backoff - attempt 5",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffFixed,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:  5,
			expected: 100 * time.Millisecond,
		},
		{
			name: "linear backoff - attempt 3",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffLinear,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        1 * time.Second,
			},
			attempt:  3,
			expected: 300 * time.Millisecond,
		},
		{
			name: "exponential backoff - attempt 1",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        10 * time.Second,
			},
			attempt:  1,
			expected: 100 * time.Millisecond,
		},
		{
			name: "exponential backoff - attempt 3",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    100 * time.Millisecond,
				MaxDelay:        10 * time.Second,
			},
			attempt:  3,
			expected: 400 * time.Millisecond,
		},
		{
			name: "exponential backoff capped by max delay",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    1 * time.Second,
				MaxDelay:        2 * time.Second,
			},
			attempt:  5,
			expected: 2 * time.Second,
		},
		{
			name: "attempt zero yields no delay",
			policy: retry.Policy{
				BackoffStrategy: retry.BackoffExponential,
				InitialDelay:    1 * time.Second,
				MaxDelay:        10 * time.Second,
			},
			attempt:  0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.CalculateDelay(tt.attempt)
			if got != tt.expected {
				t.Errorf("CalculateDelay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestUpstreamPolicy(t *testing.T) {
	p := retry.UpstreamPolicy(3, 100*time.Millisecond)
	if p.MaxRetries != 2 {
		t.Errorf("MaxRetries = %d, want 2", p.MaxRetries)
	}
	if p.BackoffStrategy != retry.BackoffExponential {
		t.Errorf("BackoffStrategy = %v, want exponential", p.BackoffStrategy)
	}

	p = retry.UpstreamPolicy(0, time.Second)
	if p.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 for degenerate attempt count", p.MaxRetries)
	}
}

func TestExecuteWithResult_SucceedsAfterFailures(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      2,
		InitialDelay:    10 * time.Millisecond,
		MaxDelay:        time.Second,
		BackoffStrategy: retry.BackoffExponential,
	}

	calls := 0
	start := time.Now()
	result, err := retry.ExecuteWithResult(context.Background(), policy, func(ctx context.Context, attempt int) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient failure")
		}
		return "ok", nil
	})
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("ExecuteWithResult() error = %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want %q", result, "ok")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Delays between attempts: base + 2*base.
	if elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 30ms of backoff", elapsed)
	}
}

func TestExecuteWithResult_ExhaustsRetries(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Second,
		BackoffStrategy: retry.BackoffExponential,
	}

	calls := 0
	lastErr := errors.New("upstream returned 502")
	_, err := retry.ExecuteWithResult(context.Background(), policy, func(ctx context.Context, attempt int) (string, error) {
		calls++
		return "", lastErr
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !errors.Is(err, lastErr) {
		t.Errorf("err = %v, want wrapped %v", err, lastErr)
	}
}

func TestExecuteWithResult_ContextCancelled(t *testing.T) {
	policy := retry.Policy{
		MaxRetries:      5,
		InitialDelay:    time.Hour,
		MaxDelay:        time.Hour,
		BackoffStrategy: retry.BackoffFixed,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := retry.ExecuteWithResult(ctx, policy, func(ctx context.Context, attempt int) (string, error) {
		return "", errors.New("always fails")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
