package memocache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	c "github.com/unkn0wn-root/memocache/codec"
	"github.com/unkn0wn-root/memocache/internal/wire"
	pr "github.com/unkn0wn-root/memocache/provider"
	"github.com/unkn0wn-root/memocache/provider/memory"
)

type countingHooks struct {
	NopHooks
	hits, misses, coalesced, failed atomic.Int64

	mu       sync.Mutex
	selfHeal []string
}

func (h *countingHooks) Hit(string)                  { h.hits.Add(1) }
func (h *countingHooks) Miss(string)                 { h.misses.Add(1) }
func (h *countingHooks) Coalesced(string)            { h.coalesced.Add(1) }
func (h *countingHooks) ComputeFailed(string, error) { h.failed.Add(1) }
func (h *countingHooks) SelfHeal(_, reason string) {
	h.mu.Lock()
	h.selfHeal = append(h.selfHeal, reason)
	h.mu.Unlock()
}

// failingProvider wraps a provider and fails Set on demand.
type failingProvider struct {
	pr.Provider
	failSet bool
}

func (p *failingProvider) Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if p.failSet {
		return false, errors.New("disk full")
	}
	return p.Provider.Set(ctx, key, value, cost, ttl)
}

func newTestMemo(t *testing.T, optsOpt func(*Options[[]string])) Memo[[]string] {
	t.Helper()
	opts := Options[[]string]{
		Namespace: "greeting",
	}
	if optsOpt != nil {
		optsOpt(&opts)
	}
	m, err := New[[]string](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}

func mustImpl[V any](t *testing.T, m Memo[V]) *memo[V] {
	t.Helper()
	impl, ok := m.(*memo[V])
	if !ok {
		t.Fatalf("unexpected concrete type for Memo")
	}
	return impl
}

// counter returns a compute func that records its invocations.
func counter(calls *atomic.Int64, v []string) ComputeFunc[[]string] {
	return func(context.Context) ([]string, error) {
		calls.Add(1)
		return v, nil
	}
}

func waitForState(t *testing.T, m Memo[[]string], key string, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.State(context.Background(), key) != want {
		if time.Now().After(deadline) {
			t.Fatalf("state of %q never became %s", key, want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewRequiresNamespace(t *testing.T) {
	if _, err := New[[]string](Options[[]string]{}); err == nil {
		t.Fatalf("expected error without namespace")
	}
}

// ==============================
// Memoization
// ==============================

func TestFetchComputesOnce(t *testing.T) {
	ctx := context.Background()
	hooks := &countingHooks{}
	m := newTestMemo(t, func(o *Options[[]string]) { o.Hooks = hooks })

	var calls atomic.Int64
	want := []string{"Hello", "World"}

	for i := 0; i < 3; i++ {
		got, err := m.Fetch(ctx, "cached_result", counter(&calls, want))
		if err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Fetch #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("compute called %d times, want 1", n)
	}
	if hooks.misses.Load() != 1 || hooks.hits.Load() != 2 {
		t.Fatalf("hooks: misses=%d hits=%d, want 1/2", hooks.misses.Load(), hooks.hits.Load())
	}
	if s := m.State(ctx, "cached_result"); s != StateReady {
		t.Fatalf("state = %s, want ready", s)
	}
}

func TestFetchLatencyShape(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	const delay = 60 * time.Millisecond
	slow := func(context.Context) ([]string, error) {
		time.Sleep(delay)
		return []string{"Hello", "World"}, nil
	}

	start := time.Now()
	if _, err := m.Fetch(ctx, "cached_result", slow); err != nil {
		t.Fatal(err)
	}
	if took := time.Since(start); took < delay {
		t.Fatalf("first Fetch took %v, want >= %v", took, delay)
	}

	start = time.Now()
	if _, err := m.Fetch(ctx, "cached_result", slow); err != nil {
		t.Fatal(err)
	}
	if took := time.Since(start); took >= delay/2 {
		t.Fatalf("second Fetch took %v, expected a cache hit", took)
	}
}

// ==============================
// Concurrency
// ==============================

func TestConcurrentFetchCoalesces(t *testing.T) {
	ctx := context.Background()
	hooks := &countingHooks{}
	m := newTestMemo(t, func(o *Options[[]string]) { o.Hooks = hooks })

	var calls atomic.Int64
	gate := make(chan struct{})
	compute := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-gate
		return []string{"Hello", "World"}, nil
	}

	const n = 50
	results := make([][]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.Fetch(ctx, "cached_result", compute)
		}(i)
	}

	waitForState(t, m, "cached_result", StateComputing)
	time.Sleep(20 * time.Millisecond) // let the rest join the flight
	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("compute called %d times, want 1", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if diff := cmp.Diff([]string{"Hello", "World"}, results[i]); diff != "" {
			t.Fatalf("caller %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	if hooks.coalesced.Load() == 0 {
		t.Fatalf("expected coalesced callers to be reported")
	}
	if got := hooks.misses.Load(); got != 1 {
		t.Fatalf("misses = %d, want 1 (one per computation)", got)
	}
}

func TestFlightServedByRecheckCountsAsHit(t *testing.T) {
	ctx := context.Background()
	hooks := &countingHooks{}
	m := newTestMemo(t, func(o *Options[[]string]) { o.Hooks = hooks })
	impl := mustImpl(t, m)

	var calls atomic.Int64
	if _, err := m.Fetch(ctx, "k", counter(&calls, []string{"v"})); err != nil {
		t.Fatal(err)
	}
	hits, misses := hooks.hits.Load(), hooks.misses.Load()

	// a caller that missed just before the previous flight stored its value
	got, err := impl.populate(ctx, "k", impl.storageKey("k"), counter(&calls, []string{"other"}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"v"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Fatalf("compute called %d times, want 1", calls.Load())
	}
	if hooks.hits.Load() != hits+1 || hooks.misses.Load() != misses {
		t.Fatalf("hooks: hits=%d misses=%d, want %d/%d", hooks.hits.Load(), hooks.misses.Load(), hits+1, misses)
	}
}

func TestDistinctKeysDoNotBlockEachOther(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	release := make(chan struct{})
	k1Done := make(chan error, 1)
	go func() {
		_, err := m.Fetch(ctx, "k1", func(context.Context) ([]string, error) {
			<-release
			return []string{"one"}, nil
		})
		k1Done <- err
	}()
	waitForState(t, m, "k1", StateComputing)

	var k2Calls atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		got, err := m.Fetch(ctx, "k2", counter(&k2Calls, []string{"two"}))
		if err != nil || len(got) != 1 || got[0] != "two" {
			t.Errorf("k2 Fetch: got=%v err=%v", got, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("k2 blocked behind k1's computation")
	}
	if k2Calls.Load() != 1 {
		t.Fatalf("k2 compute called %d times, want 1", k2Calls.Load())
	}
	if s := m.State(ctx, "k1"); s != StateComputing {
		t.Fatalf("k1 state = %s, want computing", s)
	}

	close(release)
	if err := <-k1Done; err != nil {
		t.Fatalf("k1 Fetch: %v", err)
	}
}

// ==============================
// Failure handling
// ==============================

func TestComputeFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	hooks := &countingHooks{}
	m := newTestMemo(t, func(o *Options[[]string]) { o.Hooks = hooks })

	boom := errors.New("boom")
	var calls atomic.Int64
	compute := func(context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			return nil, boom
		}
		return []string{"Hello", "World"}, nil
	}

	_, err := m.Fetch(ctx, "cached_result", compute)
	var ce *ComputeError
	if !errors.As(err, &ce) || ce.Key != "cached_result" {
		t.Fatalf("expected *ComputeError for cached_result, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("ComputeError should unwrap to the cause, got %v", err)
	}
	if s := m.State(ctx, "cached_result"); s != StateAbsent {
		t.Fatalf("state after failure = %s, want absent", s)
	}

	got, err := m.Fetch(ctx, "cached_result", compute)
	if err != nil {
		t.Fatalf("retry Fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello", "World"}, got); diff != "" {
		t.Fatalf("retry mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 2 {
		t.Fatalf("compute called %d times, want 2", calls.Load())
	}
	if hooks.failed.Load() != 1 {
		t.Fatalf("ComputeFailed reported %d times, want 1", hooks.failed.Load())
	}
}

func TestComputeFailureReachesWaiters(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	boom := errors.New("boom")
	gate := make(chan struct{})
	compute := func(context.Context) ([]string, error) {
		<-gate
		return nil, boom
	}

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := m.Fetch(ctx, "k", compute)
			errs <- err
		}()
	}
	waitForState(t, m, "k", StateComputing)
	time.Sleep(20 * time.Millisecond)
	close(gate)

	for i := 0; i < n; i++ {
		if err := <-errs; !errors.Is(err, boom) {
			t.Fatalf("waiter %d: expected boom, got %v", i, err)
		}
	}

	// not poisoned
	var calls atomic.Int64
	if _, err := m.Fetch(ctx, "k", counter(&calls, []string{"ok"})); err != nil {
		t.Fatalf("Fetch after failure: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a fresh computation after failure")
	}
}

func TestComputePanicBecomesError(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	_, err := m.Fetch(ctx, "k", func(context.Context) ([]string, error) {
		panic("kaboom")
	})
	if !errors.Is(err, ErrComputePanic) {
		t.Fatalf("expected ErrComputePanic, got %v", err)
	}
	if s := m.State(ctx, "k"); s != StateAbsent {
		t.Fatalf("state after panic = %s, want absent", s)
	}
}

func TestNilComputeAndClosed(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	if _, err := m.Fetch(ctx, "k", nil); !errors.Is(err, ErrNilCompute) {
		t.Fatalf("expected ErrNilCompute, got %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	var calls atomic.Int64
	if _, err := m.Fetch(ctx, "k", counter(&calls, nil)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("compute must not run after Close")
	}
	if _, _, err := m.Peek(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Peek after Close: expected ErrClosed, got %v", err)
	}
}

// ==============================
// Waiting
// ==============================

func TestWaitTimeoutDoesNotCancelComputation(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, func(o *Options[[]string]) { o.WaitTimeout = 20 * time.Millisecond })

	var calls atomic.Int64
	finished := make(chan struct{})
	compute := func(cctx context.Context) ([]string, error) {
		defer close(finished)
		calls.Add(1)
		select {
		case <-time.After(80 * time.Millisecond):
		case <-cctx.Done():
			return nil, cctx.Err()
		}
		return []string{"late"}, nil
	}

	_, err := m.Fetch(ctx, "k", compute)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}

	<-finished
	waitForState(t, m, "k", StateReady)
	got, ok, err := m.Peek(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("computation should still populate the entry: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff([]string{"late"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Fatalf("compute called %d times, want 1", calls.Load())
	}
}

func TestCallerCancelLeavesFlightRunning(t *testing.T) {
	m := newTestMemo(t, nil)

	gate := make(chan struct{})
	var calls atomic.Int64
	compute := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-gate
		return []string{"v"}, nil
	}

	cctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := m.Fetch(cctx, "k", compute)
		errc <- err
	}()
	waitForState(t, m, "k", StateComputing)
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected Canceled, got %v", err)
	}

	waiter := make(chan []string, 1)
	go func() {
		v, _ := m.Fetch(context.Background(), "k", compute)
		waiter <- v
	}()
	time.Sleep(10 * time.Millisecond)
	close(gate)

	if diff := cmp.Diff([]string{"v"}, <-waiter); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if calls.Load() != 1 {
		t.Fatalf("compute called %d times, want 1", calls.Load())
	}
}

// ==============================
// Forget
// ==============================

func TestForgetRecomputes(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	var calls atomic.Int64
	f := counter(&calls, []string{"v"})
	if _, err := m.Fetch(ctx, "k", f); err != nil {
		t.Fatal(err)
	}
	if err := m.Forget(ctx, "k"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if s := m.State(ctx, "k"); s != StateAbsent {
		t.Fatalf("state after Forget = %s, want absent", s)
	}
	if _, err := m.Fetch(ctx, "k", f); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("compute called %d times, want 2", calls.Load())
	}
}

func TestForgetDuringComputeSkipsStore(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, nil)

	gate := make(chan struct{})
	res := make(chan []string, 1)
	go func() {
		v, _ := m.Fetch(ctx, "k", func(context.Context) ([]string, error) {
			<-gate
			return []string{"stale"}, nil
		})
		res <- v
	}()
	waitForState(t, m, "k", StateComputing)

	if err := m.Forget(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	close(gate)

	// the detached flight still answers its caller
	if diff := cmp.Diff([]string{"stale"}, <-res); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if _, ok, _ := m.Peek(ctx, "k"); ok {
		t.Fatalf("value computed before Forget must not be stored")
	}

	got, err := m.Fetch(ctx, "k", func(context.Context) ([]string, error) {
		return []string{"fresh"}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"fresh"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

// ==============================
// Self-heal / storage
// ==============================

func TestSelfHealOnCorruptAndStale(t *testing.T) {
	ctx := context.Background()
	mp := memory.New()
	hooks := &countingHooks{}
	m := newTestMemo(t, func(o *Options[[]string]) {
		o.Provider = mp
		o.Hooks = hooks
	})
	impl := mustImpl(t, m)
	storageKey := impl.storageKey("bad")

	// Inject corrupt bytes directly into provider.
	if ok, err := mp.Set(ctx, storageKey, []byte("not-wire-format"), 1, 0); err != nil || !ok {
		t.Fatalf("inject corrupt: ok=%v err=%v", ok, err)
	}
	if _, ok, _ := m.Peek(ctx, "bad"); ok {
		t.Fatalf("Peek on corrupt should miss")
	}
	if _, ok, _ := mp.Get(ctx, storageKey); ok {
		t.Fatalf("corrupt entry was not deleted by self-heal")
	}

	// A valid frame under an older generation is stale.
	payload, _ := c.JSON[[]string]{}.Encode([]string{"old"})
	_, _ = mp.Set(ctx, storageKey, wire.Encode(0, payload), 1, 0)
	if _, err := impl.gen.Bump(ctx, storageKey); err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int64
	got, err := m.Fetch(ctx, "bad", counter(&calls, []string{"new"}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"new"}, got); diff != "" {
		t.Fatalf("stale value served (-want +got):\n%s", diff)
	}

	// Valid frame, undecodable payload.
	_ = mp.Del(ctx, storageKey)
	g, _ := impl.gen.Snapshot(ctx, storageKey)
	_, _ = mp.Set(ctx, storageKey, wire.Encode(g, []byte("{not json")), 1, 0)
	if _, ok, _ := m.Peek(ctx, "bad"); ok {
		t.Fatalf("Peek on undecodable payload should miss")
	}

	want := []string{"corrupt", "gen_mismatch", "value_decode"}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if diff := cmp.Diff(want, hooks.selfHeal); diff != "" {
		t.Fatalf("self-heal reasons (-want +got):\n%s", diff)
	}
}

func TestProviderSetFailureStillAnswers(t *testing.T) {
	ctx := context.Background()
	fp := &failingProvider{Provider: memory.New(), failSet: true}
	m := newTestMemo(t, func(o *Options[[]string]) { o.Provider = fp })

	var calls atomic.Int64
	got, err := m.Fetch(ctx, "k", counter(&calls, []string{"v"}))
	if err != nil {
		t.Fatalf("Fetch should not fail on a store error: %v", err)
	}
	if diff := cmp.Diff([]string{"v"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if s := m.State(ctx, "k"); s != StateAbsent {
		t.Fatalf("state = %s, want absent after failed store", s)
	}

	fp.failSet = false
	_, _ = m.Fetch(ctx, "k", counter(&calls, []string{"v"}))
	_, _ = m.Fetch(ctx, "k", counter(&calls, []string{"v"}))
	if calls.Load() != 2 {
		t.Fatalf("compute called %d times, want 2", calls.Load())
	}
}

type warnLogger struct {
	NopLogger
	mu    sync.Mutex
	warns []string
}

func (l *warnLogger) Warn(msg string, _ Fields) {
	l.mu.Lock()
	l.warns = append(l.warns, msg)
	l.mu.Unlock()
}

func TestOversizedValueIsNotStored(t *testing.T) {
	ctx := context.Background()
	mp := memory.New()
	hooks := &countingHooks{}
	log := &warnLogger{}
	m := newTestMemo(t, func(o *Options[[]string]) {
		o.Provider = mp
		o.Hooks = hooks
		o.Logger = log
		o.Codec = c.LimitCodec[[]string]{Inner: c.JSON[[]string]{}, MaxDecode: 4}
	})

	var calls atomic.Int64
	got, err := m.Fetch(ctx, "cached_result", counter(&calls, []string{"Hello", "World"}))
	if err != nil {
		t.Fatalf("Fetch should still answer: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello", "World"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if mp.Len() != 0 {
		t.Fatalf("an undecodable frame was stored")
	}
	_, _ = m.Fetch(ctx, "cached_result", counter(&calls, []string{"Hello", "World"}))
	if len(hooks.selfHeal) != 0 {
		t.Fatalf("unexpected self-heal: %v", hooks.selfHeal)
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	want := []string{"encode failed; value not cached", "encode failed; value not cached"}
	if diff := cmp.Diff(want, log.warns); diff != "" {
		t.Fatalf("warnings (-want +got):\n%s", diff)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	mp := memory.New()
	a := newTestMemo(t, func(o *Options[[]string]) { o.Namespace = "a"; o.Provider = mp })
	b := newTestMemo(t, func(o *Options[[]string]) { o.Namespace = "b"; o.Provider = mp })

	_, _ = a.Fetch(ctx, "k", func(context.Context) ([]string, error) { return []string{"from-a"}, nil })
	got, _ := b.Fetch(ctx, "k", func(context.Context) ([]string, error) { return []string{"from-b"}, nil })
	if diff := cmp.Diff([]string{"from-b"}, got); diff != "" {
		t.Fatalf("namespaces leaked (-want +got):\n%s", diff)
	}
	if mp.Len() != 2 {
		t.Fatalf("expected 2 stored entries, got %d", mp.Len())
	}
}

func TestDisabledAlwaysComputes(t *testing.T) {
	ctx := context.Background()
	m := newTestMemo(t, func(o *Options[[]string]) { o.Disabled = true })
	if m.Enabled() {
		t.Fatalf("Enabled() should be false")
	}

	var calls atomic.Int64
	for i := 0; i < 3; i++ {
		if _, err := m.Fetch(ctx, "k", counter(&calls, []string{"v"})); err != nil {
			t.Fatal(err)
		}
	}
	if calls.Load() != 3 {
		t.Fatalf("disabled memo computed %d times, want 3", calls.Load())
	}
	if _, ok, _ := m.Peek(ctx, "k"); ok {
		t.Fatalf("disabled memo should not store")
	}
}

func TestCodecIsPluggable(t *testing.T) {
	ctx := context.Background()
	mp := memory.New()
	m := newTestMemo(t, func(o *Options[[]string]) {
		o.Provider = mp
		o.Codec = c.Msgpack[[]string]{}
	})
	if _, err := m.Fetch(ctx, "k", func(context.Context) ([]string, error) {
		return []string{"Hello", "World"}, nil
	}); err != nil {
		t.Fatal(err)
	}
	raw, ok, _ := mp.Get(ctx, "memo:greeting:k")
	if !ok {
		t.Fatalf("expected stored entry")
	}
	_, payload, err := wire.Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Msgpack[[]string]{}.Decode(payload)
	if err != nil {
		t.Fatalf("stored payload is not msgpack: %v", err)
	}
	if diff := cmp.Diff([]string{"Hello", "World"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{
		StateAbsent:    "absent",
		StateComputing: "computing",
		StateReady:     "ready",
		State(9):       "unknown",
	} {
		if s.String() != want {
			t.Fatalf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

func TestForgetErrorUnwrap(t *testing.T) {
	bump, del := errors.New("bump"), errors.New("del")
	err := error(&ForgetError{Key: "k", BumpErr: bump, DelErr: del})
	if !errors.Is(err, bump) || !errors.Is(err, del) {
		t.Fatalf("ForgetError should unwrap to both causes")
	}
}
