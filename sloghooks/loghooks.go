// Package sloghooks reports pipeline events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/gridchain"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	SuspendedEvery   uint64
	EntryLoadedEvery uint64
	// Optional key redactor. Defaults to a SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	suspendedCtr atomic.Uint64
	loadedCtr    atomic.Uint64
}

var _ gridchain.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
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

func (h *Hooks) StageFailed(stage string, phase gridchain.Phase, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("gridchain.stage_failed", "stage", stage, "phase", string(phase), "err", err)
}

func (h *Hooks) CommandFailed(command string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("gridchain.command_failed", "command", command, "err", err)
}

func (h *Hooks) Suspended(stage string, phase gridchain.Phase) {
	if h.l == nil || !sample(h.opts.SuspendedEvery, &h.suspendedCtr) {
		return
	}
	h.l.Debug("gridchain.suspended", "stage", stage, "phase", string(phase))
}

func (h *Hooks) ShortCircuited(stage string) {
	if h.l == nil {
		return
	}
	h.l.Debug("gridchain.short_circuited", "stage", stage)
}

func (h *Hooks) ContractViolated(err *gridchain.ContractViolation) {
	if h.l == nil {
		return
	}
	h.l.Error("gridchain.contract_violation", "op", err.Op, "detail", err.Detail)
}

func (h *Hooks) EntryLoaded(key string) {
	if h.l == nil || !sample(h.opts.EntryLoadedEvery, &h.loadedCtr) {
		return
	}
	h.l.Debug("gridchain.entry_loaded", "key", h.redact(key))
}

func (h *Hooks) StoreWriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("gridchain.store_write_failed", "key", h.redact(key), "err", err)
}
