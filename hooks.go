package memocache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The memo calls them on hot paths.
type Hooks interface {
	// Fetch found a ready value, either directly or when the flight it
	// joined re-checked the store.
	Hit(key string)
	// A computation is about to run for key. Fires once per computation,
	// not once per waiting caller.
	Miss(key string)
	// The caller shared a flight with at least one other caller.
	Coalesced(key string)
	// The compute function returned an error or panicked. The entry stays absent.
	ComputeFailed(key string, err error)

	// A stored entry was deleted by the memo on read.
	// reason ∈ {"corrupt", "gen_mismatch", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Provider returned ok=false on Set (backpressure/eviction).
	ProviderSetRejected(storageKey string)

	// Both gen bump and delete failed during Forget.
	ForgetOutage(key string, bumpErr, delErr error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                        {}
func (NopHooks) Miss(string)                       {}
func (NopHooks) Coalesced(string)                  {}
func (NopHooks) ComputeFailed(string, error)       {}
func (NopHooks) SelfHeal(string, string)           {}
func (NopHooks) ProviderSetRejected(string)        {}
func (NopHooks) ForgetOutage(string, error, error) {}
