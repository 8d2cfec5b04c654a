package memocache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/memocache/codec"
	gen "github.com/unkn0wn-root/memocache/genstore"
	pr "github.com/unkn0wn-root/memocache/provider"
)

// SetCostFunc returns the cost passed to cost-aware providers (Ristretto) for a stored entry.
type SetCostFunc func(storageKey string, raw []byte) int64

// ComputeFunc produces the value for a key on a miss. It may be slow.
// The context it receives is detached from the cancellation of any single
// caller because its result is shared by every caller waiting on it.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Memo is the memoizing cache. V is the caller's value type.
// Serialization is handled by a pluggable Codec[V].
type Memo[V any] interface {
	// Fetch returns the ready value for key, or runs compute exactly once
	// across all concurrent callers and caches its result.
	Fetch(ctx context.Context, key string, compute ComputeFunc[V]) (V, error)

	// Peek returns the ready value without computing.
	Peek(ctx context.Context, key string) (v V, ok bool, err error)

	// State reports whether key is absent, computing or ready.
	State(ctx context.Context, key string) State

	// Forget drops a ready value. A computation in flight for key still
	// answers its callers but its result is not stored.
	Forget(ctx context.Context, key string) error

	// Enabled is false when the memo was built with Disabled set.
	Enabled() bool
	Close(context.Context) error
}

// Options tune the memo. Only Namespace is required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // isolates keys of different memos sharing one provider. e.g. "greeting"

	Provider       pr.Provider   // nil => provider/memory (unbounded, no expiry)
	Codec          c.Codec[V]    // nil => codec.JSON
	Logger         Logger        // nil => NopLogger
	Hooks          Hooks         // nil => NopHooks
	GenStore       gen.GenStore  // nil => LocalGenStore without cleanup
	WaitTimeout    time.Duration // bounds each caller's wait; 0 => unbounded
	Disabled       bool          // compute on every Fetch (still coalesced)
	ComputeSetCost SetCostFunc   // default 1
}

func New[V any](opts Options[V]) (Memo[V], error) {
	m, err := newMemo[V](opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}
