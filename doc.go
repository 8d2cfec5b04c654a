// Package memocache implements a compute-once, serve-many memoizing cache.
// A value is computed lazily on the first Fetch of its key and every later
// Fetch is served from the store without running the computation again.
//
// Components:
//   - Provider: byte store holding ready values (memory by default, or
//     Ristretto / BigCache when a bounded store is wanted).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - GenStore: generation counter per key. Forget bumps it so a computation
//     that was in flight when the key was forgotten never lands in the store.
//
// Concurrent Fetch calls for the same key share one computation:
//
//	v, err := memo.Fetch(ctx, "cached_result", func(ctx context.Context) ([]string, error) {
//		return loadMessages(ctx) // runs at most once per successful population
//	})
//
// A failed computation is never cached. The error is returned to the caller
// that triggered it and to every caller that was waiting on it, and the next
// Fetch runs the computation again.
package memocache
