package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/salesinvoice/internal/config"
)

const keyGenerate = "invoice:generate:rate:%s"

// GenerationLimiter throttles invoice generation requests per caller.
// Generation takes row locks on sales persons, so a burst of bulk runs would
// serialize every other writer behind it.
type GenerationLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

// NewGenerationLimiter returns nil when Redis or the rate is not configured;
// a nil limiter allows everything.
func NewGenerationLimiter(client *redis.Client, cfg config.Config) *GenerationLimiter {
	if client == nil || cfg.GenerateRatePerMinute <= 0 || cfg.GenerateBurst <= 0 {
		return nil
	}
	return &GenerationLimiter{
		bucket: NewTokenBucket(client),
		rate:   float64(cfg.GenerateRatePerMinute) / 60,
		burst:  cfg.GenerateBurst,
	}
}

func (l *GenerationLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *GenerationLimiter) Allow(ctx context.Context, caller string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	caller = strings.TrimSpace(caller)
	if caller == "" {
		caller = "anonymous"
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyGenerate, caller), l.rate, l.burst)
}
