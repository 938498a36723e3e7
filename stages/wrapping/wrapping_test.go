package wrapping

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/commands"
)

type item struct {
	v    any
	meta gridchain.Metadata
}

type memContainer struct {
	mu    sync.Mutex
	m     map[string]item
	loads int
	err   error
}

func newContainer(kv map[string]any) *memContainer {
	c := &memContainer{m: map[string]item{}}
	for k, v := range kv {
		c.m[k] = item{v: v, meta: gridchain.Metadata{Version: 1}}
	}
	return c
}

func (c *memContainer) Load(_ context.Context, key string) (any, gridchain.Metadata, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loads++
	it, ok := c.m[key]
	return it.v, it.meta, ok, nil
}

func (c *memContainer) Save(_ context.Context, key string, v any, meta gridchain.Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.m[key] = item{v: v, meta: meta}
	return nil
}

func (c *memContainer) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.m, key)
	return nil
}

func newPipeline(t *testing.T, c *memContainer, owner func(string) gridchain.Locality) *gridchain.Pipeline {
	t.Helper()
	s, err := New(Options{Container: c, Owner: owner})
	require.NoError(t, err)
	return gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s}})
}

func TestWrapRecordsContainerState(t *testing.T) {
	c := newContainer(map[string]any{"a": "1"})
	p := newPipeline(t, c, nil)

	iv := gridchain.NewInvocation()
	v, err := p.Execute(context.Background(), commands.Get{Key: "a"}, iv)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	e := iv.LookupEntry("a")
	require.True(t, e.HasOldValue())
	assert.False(t, e.IsModified())
	assert.Equal(t, gridchain.Primary, e.Locality())
}

func TestCommitWritesAndRemovals(t *testing.T) {
	c := newContainer(map[string]any{"a": "1", "b": "2"})
	p := newPipeline(t, c, nil)
	ctx := context.Background()

	_, err := p.Execute(ctx, commands.Put{Key: "a", Value: "10"}, nil)
	require.NoError(t, err)
	_, err = p.Execute(ctx, commands.Remove{Key: "b"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "10", c.m["a"].v)
	assert.NotContains(t, c.m, "b")
}

func TestBlindWriteSkipsLookup(t *testing.T) {
	c := newContainer(nil)
	p := newPipeline(t, c, nil)

	iv := gridchain.NewInvocation()
	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "x"}, iv)
	require.NoError(t, err)
	assert.Equal(t, 0, c.loads)
	assert.True(t, iv.LookupEntry("a").SkipLookup())
	assert.Equal(t, "x", c.m["a"].v)
}

func TestNonOwnerNeitherReadsNorCommits(t *testing.T) {
	c := newContainer(map[string]any{"a": "1"})
	p := newPipeline(t, c, func(string) gridchain.Locality { return gridchain.None })

	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "2", ReturnPrevious: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.loads)
	assert.Equal(t, "1", c.m["a"].v)
}

func TestFailedCommandCommitsNothing(t *testing.T) {
	c := newContainer(map[string]any{"a": "1"})
	s, err := New(Options{Container: c})
	require.NoError(t, err)
	boom := errors.New("boom")
	failing := &failAfterPut{err: boom}
	p := gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s, failing}})

	_, err = p.Execute(context.Background(), commands.Put{Key: "a", Value: "2"}, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "1", c.m["a"].v)
}

type failAfterPut struct {
	gridchain.NopStage
	err error
}

func (f *failAfterPut) AfterCommand(*gridchain.PipelineContext, gridchain.Command, any, error) gridchain.Step {
	return gridchain.Fail(f.err)
}

func TestCommitErrorFailsInvocation(t *testing.T) {
	c := newContainer(nil)
	c.err = errors.New("full")
	p := newPipeline(t, c, nil)

	_, err := p.Execute(context.Background(), commands.Put{Key: "a", Value: "x"}, nil)
	require.ErrorIs(t, err, c.err)
}
