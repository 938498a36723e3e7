package versioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/commands"
	"github.com/unkn0wn-root/gridchain/genstore"
)

func TestBumpsDirtyEntries(t *testing.T) {
	for _, async := range []bool{false, true} {
		ctx := context.Background()
		gens := genstore.NewLocal(0, 0)
		t.Cleanup(func() { _ = gens.Close(ctx) })
		s, err := New(Options{Gens: gens, Async: async})
		require.NoError(t, err)
		p := gridchain.MustNew(gridchain.Options{Stages: []gridchain.Stage{s}})

		for want := uint64(1); want <= 3; want++ {
			iv := gridchain.NewInvocation()
			_, err := p.Execute(ctx, commands.Put{Key: "k", Value: "v"}, iv)
			require.NoError(t, err)
			assert.Equal(t, want, iv.LookupEntry("k").Metadata().Version)
		}

		iv := gridchain.NewInvocation()
		_, err = p.Execute(ctx, commands.Get{Key: "k"}, iv)
		require.NoError(t, err)
		cur, _ := gens.Current(ctx, "k")
		assert.Equal(t, uint64(3), cur, "reads must not bump")
	}
}

func TestRequiresGenStore(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}
