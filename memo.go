package memocache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	c "github.com/unkn0wn-root/memocache/codec"
	gen "github.com/unkn0wn-root/memocache/genstore"
	"github.com/unkn0wn-root/memocache/internal/wire"
	pr "github.com/unkn0wn-root/memocache/provider"
	"github.com/unkn0wn-root/memocache/provider/memory"
)

type memo[V any] struct {
	ns             string
	provider       pr.Provider
	codec          c.Codec[V]
	log            Logger
	hooks          Hooks
	gen            gen.GenStore
	enabled        bool
	waitTimeout    time.Duration
	computeSetCost SetCostFunc

	// one flight per storage key; the group lock is never held while computing
	sf singleflight.Group

	// running computations per storage key, for State
	flightMu sync.Mutex
	flights  map[string]int

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newMemo[V any](opts Options[V]) (*memo[V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("memocache: namespace is required")
	}

	m := &memo[V]{
		ns:          opts.Namespace,
		enabled:     !opts.Disabled,
		waitTimeout: opts.WaitTimeout,
		flights:     make(map[string]int),
	}

	m.log = orDefault[Logger](opts.Logger, func() Logger { return NopLogger{} })
	m.hooks = orDefault[Hooks](opts.Hooks, func() Hooks { return NopHooks{} })
	m.provider = orDefault[pr.Provider](opts.Provider, func() pr.Provider { return memory.New() })
	m.gen = orDefault[gen.GenStore](opts.GenStore, func() gen.GenStore { return gen.NewLocalGenStore(0, 0) })
	m.codec = orDefault[c.Codec[V]](opts.Codec, func() c.Codec[V] { return c.JSON[V]{} })
	m.computeSetCost = opts.ComputeSetCost
	if m.computeSetCost == nil {
		m.computeSetCost = func(string, []byte) int64 { return 1 }
	}

	return m, nil
}

func (m *memo[V]) Enabled() bool { return m.enabled }

func (m *memo[V]) Close(ctx context.Context) error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		// Close gen store first (best effort)
		genErr := m.gen.Close(ctx)
		m.closeErr = errors.Join(genErr, m.provider.Close(ctx))
	})
	return m.closeErr
}

func (m *memo[V]) Fetch(ctx context.Context, key string, compute ComputeFunc[V]) (V, error) {
	var zero V
	if compute == nil {
		return zero, ErrNilCompute
	}
	if m.closed.Load() {
		return zero, ErrClosed
	}

	k := m.storageKey(key)
	if m.enabled {
		if v, ok := m.load(ctx, k); ok {
			m.hooks.Hit(key)
			return v, nil
		}
	}

	if m.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.waitTimeout)
		defer cancel()
	}

	// The flight outlives any single caller: it keeps ctx values but not its
	// deadline or cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := m.sf.DoChan(k, func() (any, error) {
		v, err := m.populate(flightCtx, key, k, compute)
		return v, err
	})

	select {
	case res := <-ch:
		if res.Shared {
			m.hooks.Coalesced(key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		m.log.Debug("gave up waiting for computation", Fields{"key": key, "err": ctx.Err()})
		return zero, ctx.Err()
	}
}

func (m *memo[V]) Peek(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if m.closed.Load() {
		return zero, false, ErrClosed
	}
	if !m.enabled {
		return zero, false, nil
	}
	v, ok := m.load(ctx, m.storageKey(key))
	return v, ok, nil
}

func (m *memo[V]) State(ctx context.Context, key string) State {
	k := m.storageKey(key)
	if m.enabled && !m.closed.Load() {
		if _, ok := m.load(ctx, k); ok {
			return StateReady
		}
	}
	m.flightMu.Lock()
	n := m.flights[k]
	m.flightMu.Unlock()
	if n > 0 {
		return StateComputing
	}
	return StateAbsent
}

func (m *memo[V]) Forget(ctx context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if !m.enabled {
		return nil
	}
	k := m.storageKey(key)

	// bump first: a flight that observed the old generation can no longer store
	newGen, bumpErr := m.gen.Bump(ctx, k)
	// new callers start a fresh flight instead of joining the detached one
	m.sf.Forget(k)
	delErr := m.provider.Del(ctx, k)

	if bumpErr != nil && delErr != nil {
		m.hooks.ForgetOutage(key, bumpErr, delErr)
	}
	if bumpErr != nil || delErr != nil {
		m.log.Error("forget failed", Fields{"key": key, "bump_err": bumpErr, "del_err": delErr})
		return &ForgetError{Key: key, BumpErr: bumpErr, DelErr: delErr}
	}
	m.log.Debug("forgot key (bumped gen + cleared value)", Fields{"key": key, "newGen": newGen})
	return nil
}

// populate runs inside the flight. It re-checks the store because a caller
// that missed just before the previous flight finished would otherwise
// compute a second time.
func (m *memo[V]) populate(ctx context.Context, key, k string, compute ComputeFunc[V]) (V, error) {
	var zero V
	m.track(k, 1)
	defer m.track(k, -1)

	if m.enabled {
		if v, ok := m.load(ctx, k); ok {
			m.hooks.Hit(key)
			return v, nil
		}
	}
	m.hooks.Miss(key)

	obs := m.snapshotGen(ctx, k)
	start := time.Now()
	v, err := safeCompute(ctx, compute)
	if err != nil {
		m.hooks.ComputeFailed(key, err)
		m.log.Warn("compute failed; entry left absent", Fields{"key": key, "err": err})
		return zero, &ComputeError{Key: key, Err: err}
	}
	m.log.Debug("computed", Fields{"key": key, "took": time.Since(start)})

	if m.enabled {
		m.store(ctx, key, k, v, obs)
	}
	return v, nil
}

// store writes v iff the generation observed before compute is still current.
// Failures are logged only: callers already have their value and the entry
// simply stays absent.
func (m *memo[V]) store(ctx context.Context, key, k string, v V, observedGen uint64) {
	if m.snapshotGen(ctx, k) != observedGen {
		// forgotten while computing; skip stale write
		m.log.Debug("store skipped (gen mismatch)", Fields{"key": key, "obs": observedGen})
		return
	}
	payload, err := m.codec.Encode(v)
	if err != nil {
		m.log.Warn("encode failed; value not cached", Fields{"key": key, "err": err})
		return
	}
	b := wire.Encode(observedGen, payload)
	ok, err := m.provider.Set(ctx, k, b, m.computeSetCost(k, b), 0)
	if err != nil {
		m.log.Warn("provider set failed; value not cached", Fields{"key": key, "err": err})
		return
	}
	if !ok {
		m.hooks.ProviderSetRejected(k)
		m.log.Debug("provider rejected set (pressure)", Fields{"key": key})
	}
}

func (m *memo[V]) load(ctx context.Context, k string) (V, bool) {
	var zero V
	raw, ok, err := m.provider.Get(ctx, k)
	if err != nil {
		m.log.Warn("provider get failed; treating as miss", Fields{"key": k, "err": err})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	g, payload, err := wire.Decode(raw)
	if err != nil {
		m.selfHeal(ctx, k, "corrupt")
		return zero, false
	}
	// validate generation
	if g != m.snapshotGen(ctx, k) {
		m.selfHeal(ctx, k, "gen_mismatch")
		return zero, false
	}
	v, err := m.codec.Decode(payload)
	if err != nil {
		m.selfHeal(ctx, k, "value_decode")
		return zero, false
	}
	return v, true
}

func (m *memo[V]) selfHeal(ctx context.Context, k, reason string) {
	_ = m.provider.Del(ctx, k)
	m.hooks.SelfHeal(k, reason)
	m.log.Debug("dropped unreadable entry", Fields{"key": k, "reason": reason})
}

func (m *memo[V]) track(k string, delta int) {
	m.flightMu.Lock()
	n := m.flights[k] + delta
	if n <= 0 {
		delete(m.flights, k)
	} else {
		m.flights[k] = n
	}
	m.flightMu.Unlock()
}

func (m *memo[V]) snapshotGen(ctx context.Context, storageKey string) uint64 {
	g, err := m.gen.Snapshot(ctx, storageKey)
	if err != nil {
		// Conservative: treat as 0 so stale writes skip and reads self-heal
		m.log.Warn("gen snapshot error", Fields{"key": storageKey, "err": err})
		return 0
	}
	return g
}

func (m *memo[V]) storageKey(userKey string) string {
	// isolate by namespace
	return "memo:" + m.ns + ":" + userKey
}

// safeCompute turns a panic into an error. singleflight would otherwise
// re-panic it on a goroutine nobody can recover.
func safeCompute[V any](ctx context.Context, compute ComputeFunc[V]) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, fmt.Errorf("%w: %v", ErrComputePanic, r)
		}
	}()
	return compute(ctx)
}
