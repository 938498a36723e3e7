package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/commands"
)

type failing struct{ gridchain.NopStage }

func (failing) BeforeCommand(*gridchain.PipelineContext, gridchain.Command) gridchain.Step {
	return gridchain.Fail(errors.New("nope"))
}

func TestCounts(t *testing.T) {
	s := New()
	tick := time.Unix(0, 0)
	s.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	p := gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s}})
	ctx := context.Background()

	seeded := gridchain.NewInvocation()
	gridchain.EntryFor(seeded, "a").RecordOldValue("1", gridchain.Metadata{}, true)
	_, err := p.Execute(ctx, commands.Get{Key: "a"}, seeded)
	require.NoError(t, err)

	missing := gridchain.NewInvocation()
	gridchain.EntryFor(missing, "b").RecordOldValue(nil, gridchain.Metadata{}, false)
	_, err = p.Execute(ctx, commands.Get{Key: "b"}, missing)
	require.NoError(t, err)

	_, err = p.Execute(ctx, commands.Put{Key: "c", Value: "x"}, nil)
	require.NoError(t, err)
	_, err = p.Execute(ctx, commands.Invalidate{KeyList: []string{"d", "e"}}, nil)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, Snapshot{
		Invocations: 4, Hits: 1, Misses: 1, Stores: 1, Removes: 2,
		AvgLatency: time.Millisecond,
	}, snap)

	s.Reset()
	assert.Equal(t, Snapshot{}, s.Snapshot())
}

func TestFailuresCounted(t *testing.T) {
	s := New()
	p := gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s, failing{}}})
	_, err := p.Execute(context.Background(), commands.Get{Key: "a"}, nil)
	require.Error(t, err)
	assert.Equal(t, int64(1), s.Snapshot().Failures)
}
