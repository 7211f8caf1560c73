package ratelimiter

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second
)

// RateLimiter spaces out operations that share a key, such as requests to
// one host or messages to one chat. Different keys never wait for each other.
type RateLimiter struct {
	interval   time.Duration
	intervalOf func(key string) time.Duration
	limiters   map[string]*rate.Limiter
	mu         sync.Mutex
	log        *slog.Logger
}

type Option func(*RateLimiter)

// WithKeyInterval picks the spacing per key instead of one fixed interval.
func WithKeyInterval(intervalOf func(key string) time.Duration) Option {
	return func(rl *RateLimiter) {
		rl.intervalOf = intervalOf
	}
}

// New returns a limiter that lets one operation per key through every
// interval. A non-positive interval disables limiting.
func New(
	interval time.Duration,
	log *slog.Logger,
	opts ...Option,
) *RateLimiter {
	rl := &RateLimiter{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
		log:      log,
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Wait blocks until an operation for key may proceed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	limiter := rl.limiter(key)
	if limiter == nil {
		return ctx.Err()
	}

	reservation := limiter.Reserve()
	delay := reservation.Delay()
	if delay == 0 {
		return nil
	}

	rl.log.DebugContext(ctx, "Rate limiting",
		"key", key,
		"delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()

		return ctx.Err()
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limiters[key]; ok {
		return limiter
	}

	interval := rl.interval
	if rl.intervalOf != nil {
		interval = rl.intervalOf(key)
	}
	if interval <= 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	rl.limiters[key] = limiter

	return limiter
}

// ChatInterval is the send spacing Telegram tolerates for a chat key made of
// the decimal chat ID. Group chats have negative IDs.
func ChatInterval(key string) time.Duration {
	if strings.HasPrefix(key, "-") {
		return groupChatRate
	}
	return privateChatRate
}
