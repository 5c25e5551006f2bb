package domain

import (
	"context"
	"sync"
)

type aiUsageKey struct{}

// AIUsage collects AI token usage for a single HTTP request.
// The handler puts a pointer into the context before calling the service;
// completers write to it; the handler reads it for response headers.
type AIUsage struct {
	mu          sync.Mutex
	totalTokens int
	calls       int
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *AIUsage) {
	u := &AIUsage{}
	return context.WithValue(ctx, aiUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *AIUsage {
	u, _ := ctx.Value(aiUsageKey{}).(*AIUsage)
	return u
}

// AddTokens records consumed tokens. A cache hit records a call with 0 tokens.
func (u *AIUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.calls++
	u.mu.Unlock()
}

// TotalTokens returns the tokens recorded so far.
func (u *AIUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Used reports whether any completion ran for this request.
func (u *AIUsage) Used() bool {
	if u == nil {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls > 0
}

// Calls returns the number of completions recorded, cache hits included.
func (u *AIUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}
