package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/commands"
)

type memStore struct {
	mu      sync.Mutex
	saved   map[string]any
	deleted []string
	failKey string
	gate    chan struct{}
}

func newMemStore() *memStore { return &memStore{saved: map[string]any{}} }

func (s *memStore) Save(_ context.Context, key string, v any, _ gridchain.Metadata) error {
	if s.gate != nil {
		<-s.gate
	}
	if key == s.failKey {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[key] = v
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

type failHooks struct {
	gridchain.NopHooks
	mu   sync.Mutex
	keys []string
}

func (h *failHooks) StoreWriteFailed(key string, _ error) {
	h.mu.Lock()
	h.keys = append(h.keys, key)
	h.mu.Unlock()
}

func build(t *testing.T, opts Options) (*gridchain.Pipeline, *Stage) {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s}}), s
}

func TestWritesDirtyEntries(t *testing.T) {
	store := newMemStore()
	p, s := build(t, Options{Store: store})
	ctx := context.Background()

	_, err := p.Execute(ctx, commands.Put{Key: "a", Value: "1"}, nil)
	require.NoError(t, err)
	_, err = p.Execute(ctx, commands.Invalidate{KeyList: []string{"b", "c"}}, nil)
	require.NoError(t, err)
	_, err = p.Execute(ctx, commands.Get{Key: "a"}, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": "1"}, store.saved)
	assert.Equal(t, []string{"b", "c"}, store.deleted)
	assert.Equal(t, int64(1), s.Stores())
	assert.Equal(t, int64(2), s.Removes())
}

func TestSkipCacheStore(t *testing.T) {
	store := newMemStore()
	p, _ := build(t, Options{Store: store})

	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "1", Flag: gridchain.SkipCacheStore}, nil)
	require.NoError(t, err)
	assert.Empty(t, store.saved)
}

func TestNonOwnedEntriesAreSkipped(t *testing.T) {
	store := newMemStore()
	p, _ := build(t, Options{Store: store})

	iv := gridchain.NewInvocation()
	gridchain.EntryFor(iv, "a").SetLocality(gridchain.None)
	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "1"}, iv)
	require.NoError(t, err)
	assert.Empty(t, store.saved)

	iv = gridchain.NewInvocation()
	gridchain.EntryFor(iv, "a").SetLocality(gridchain.None)
	_, err = p.Execute(context.Background(), commands.Put{Key: "a", Value: "1", Flag: gridchain.SkipOwnershipCheck}, iv)
	require.NoError(t, err)
	assert.Equal(t, "1", store.saved["a"])
}

func TestWriteFailureIsReportedAndFails(t *testing.T) {
	store := newMemStore()
	store.failKey = "a"
	hooks := &failHooks{}
	p, _ := build(t, Options{Store: store, Hooks: hooks})

	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "1"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"a"}, hooks.keys)
}

func TestAsyncWriteSuspendsInvocation(t *testing.T) {
	store := newMemStore()
	store.gate = make(chan struct{})
	p, _ := build(t, Options{Store: store, Async: true})

	ctx := context.Background()
	fut := p.Invoke(commands.Put{Key: "a", Value: "1", ReturnPrevious: true}, p.NewContext(ctx, nil))
	_, _, done := fut.Result()
	require.False(t, done)

	close(store.gate)
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	v, err := fut.Await(wctx)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, "1", store.saved["a"])
}
