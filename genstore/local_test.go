package genstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalCurrentZeroForMissing(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	for i := 0; i < 2; i++ {
		if _, err := s.Bump(ctx, "b"); err != nil {
			t.Fatal(err)
		}
	}
	for key, want := range map[string]uint64{"a": 0, "b": 2, "c": 0} {
		got, err := s.Current(ctx, key)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Current(%q)=%d want %d", key, got, want)
		}
	}
}

func TestLocalBumpIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	const n = 100
	var wg sync.WaitGroup
	seen := make([]uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i], _ = s.Bump(ctx, "k")
		}(i)
	}
	wg.Wait()

	uniq := make(map[uint64]bool, n)
	for _, g := range seen {
		uniq[g] = true
	}
	if len(uniq) != n {
		t.Fatalf("bumps returned duplicate generations")
	}
	if g, _ := s.Current(ctx, "k"); g != n {
		t.Fatalf("current=%d want %d", g, n)
	}
}

func TestLocalCleanupPrunesIdle(t *testing.T) {
	ctx := context.Background()
	s := NewLocal(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := s.Bump(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	s.Cleanup(20 * time.Millisecond)

	if g, _ := s.Current(ctx, "old"); g != 0 {
		t.Fatalf("expected old pruned, got %d", g)
	}
	if g, _ := s.Current(ctx, "fresh"); g != 1 {
		t.Fatalf("expected fresh kept, got %d", g)
	}
}

func TestLocalCloseTwice(t *testing.T) {
	s := NewLocal(time.Millisecond, time.Hour)
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
