// Package ratelimit decorates an LLM service with request throttling,
// keeping API spend bounded during batch study-material generation.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/bookwise-ai/bookwise/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultRequestsPerMinute bounds generation calls per minute.
const DefaultRequestsPerMinute = 20

// LLMService wraps another LLM service and blocks Generate calls until
// the limiter grants a slot. Ping is not limited; it is a health check.
type LLMService struct {
	inner   driven.LLMService
	limiter *rate.Limiter
}

// New wraps an LLM service with a requests-per-minute budget. Zero or
// negative requestsPerMinute applies the default.
func New(inner driven.LLMService, requestsPerMinute int) *LLMService {
	if requestsPerMinute <= 0 {
		requestsPerMinute = DefaultRequestsPerMinute
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(interval), requestsPerMinute),
	}
}

// Generate waits for a limiter slot, then delegates. A cancelled context
// aborts the wait.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.inner.Generate(ctx, prompt, opts)
}

// ModelName returns the wrapped model's name.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping delegates without consuming a limiter slot.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}
