package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/gridchain"
)

func newBuffered(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(l, opts), &buf
}

func TestKeysAreRedacted(t *testing.T) {
	h, buf := newBuffered(Options{})
	h.StoreWriteFailed("user:42", errors.New("disk full"))

	out := buf.String()
	if strings.Contains(out, "user:42") {
		t.Fatalf("raw key leaked: %s", out)
	}
	if !strings.Contains(out, "gridchain.store_write_failed") || !strings.Contains(out, "disk full") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newBuffered(Options{Redact: func(string) string { return "***" }})
	h.EntryLoaded("secret")
	if !strings.Contains(buf.String(), "key=***") {
		t.Fatalf("redactor not used: %s", buf.String())
	}
}

func TestSampling(t *testing.T) {
	h, buf := newBuffered(Options{SuspendedEvery: 3})
	for i := 0; i < 9; i++ {
		h.Suspended("writer", gridchain.PhaseAfter)
	}
	if n := strings.Count(buf.String(), "gridchain.suspended"); n != 3 {
		t.Fatalf("logged %d suspensions, want 3", n)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.StageFailed("s", gridchain.PhaseBefore, errors.New("x"))
	h.ContractViolated(&gridchain.ContractViolation{Op: "IsModified"})
}
