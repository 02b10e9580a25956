package ai

import (
	"context"
	"strings"
	"time"

	"google.golang.org/genai"
)

// callWithRetry retries a generation call for transient failures only.
// Rate limits and server errors get a short staged backoff; anything else
// (bad request, auth) fails immediately. The waits are short because the
// caller is latency-bound: a local fallback is already playable.
func callWithRetry(ctx context.Context, call func(ctx context.Context) (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	const maxAttempts = 3
	waits := []time.Duration{500 * time.Millisecond, 1500 * time.Millisecond}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !isRateLimitError(err) && !isServerError(err) {
			return nil, err
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waits[attempt]):
		}
	}
	return nil, lastErr
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "500") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "internal server error") ||
		strings.Contains(msg, "unavailable")
}
