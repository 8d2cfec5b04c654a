// Package loghooks reports memo events through a memocache.Logger.
// Hot-path events (hit, miss, coalesced, self-heal) are sampled and keys are
// redacted by default.
package loghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	"github.com/unkn0wn-root/memocache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	HitEvery      uint64
	MissEvery     uint64
	SelfHealEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    memocache.Logger
	opts Options

	hitCtr      atomic.Uint64
	missCtr     atomic.Uint64
	selfHealCtr atomic.Uint64
}

var _ memocache.Hooks = (*Hooks)(nil)

func New(l memocache.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) Hit(key string) {
	if h.l == nil || !sample(h.opts.HitEvery, &h.hitCtr) {
		return
	}
	h.l.Debug("memocache.hit", memocache.Fields{"key": h.redact(key)})
}

func (h *Hooks) Miss(key string) {
	if h.l == nil || !sample(h.opts.MissEvery, &h.missCtr) {
		return
	}
	h.l.Debug("memocache.miss", memocache.Fields{"key": h.redact(key)})
}

func (h *Hooks) Coalesced(key string) {
	if h.l == nil {
		return
	}
	h.l.Debug("memocache.coalesced", memocache.Fields{"key": h.redact(key)})
}

func (h *Hooks) ComputeFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("memocache.compute_failed", memocache.Fields{
		"key": h.redact(key),
		"err": err,
	})
}

func (h *Hooks) SelfHeal(storageKey, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("memocache.self_heal", memocache.Fields{
		"key":    h.redact(storageKey),
		"reason": reason,
	})
}

func (h *Hooks) ProviderSetRejected(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("memocache.provider_set_rejected", memocache.Fields{"key": h.redact(storageKey)})
}

func (h *Hooks) ForgetOutage(key string, bumpErr, delErr error) {
	if h.l == nil {
		return
	}
	h.l.Error("memocache.forget_outage", memocache.Fields{
		"key":      h.redact(key),
		"bump_err": bumpErr,
		"del_err":  delErr,
	})
}
