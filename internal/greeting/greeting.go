// Package greeting serves the greeting messages. Producing them is slow, so
// the result is memoized under a single fixed key.
package greeting

import (
	"context"
	"slices"
	"time"

	"github.com/unkn0wn-root/memocache"
)

// CacheKey is the memo key the messages live under.
const CacheKey = "cached_result"

const DefaultDelay = 3 * time.Second

var DefaultMessages = []string{"Hello", "World"}

type Config struct {
	Delay    time.Duration // simulated cost of producing the messages; 0 => none
	Messages []string      // nil => DefaultMessages
}

type Service struct {
	memo     memocache.Memo[[]string]
	log      memocache.Logger
	delay    time.Duration
	messages []string
}

func New(memo memocache.Memo[[]string], log memocache.Logger, cfg Config) *Service {
	if log == nil {
		log = memocache.NopLogger{}
	}
	msgs := cfg.Messages
	if msgs == nil {
		msgs = DefaultMessages
	}
	return &Service{
		memo:     memo,
		log:      log,
		delay:    cfg.Delay,
		messages: slices.Clone(msgs),
	}
}

// Messages returns the memoized messages, producing them on the first call.
func (s *Service) Messages(ctx context.Context) ([]string, error) {
	return s.memo.Fetch(ctx, CacheKey, s.compute)
}

// Reset forgets the memoized messages so the next call produces them again.
func (s *Service) Reset(ctx context.Context) error {
	return s.memo.Forget(ctx, CacheKey)
}

func (s *Service) compute(ctx context.Context) ([]string, error) {
	s.log.Info("producing messages", memocache.Fields{"delay": s.delay.String()})
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return slices.Clone(s.messages), nil
}
