package sonora

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aural/sonora/generators"
	"github.com/aural/sonora/internal/testutil"
)

func TestRegistryRegisterGetList(t *testing.T) {
	r := NewRegistry()
	e1 := testutil.MustEngine(t)
	e2 := testutil.MustEngine(t)

	r.Register(e1)
	r.Register(e2)

	got, ok := r.Get(e1.ID)
	require.True(t, ok)
	assert.Equal(t, e1, got)

	assert.ElementsMatch(t, []*Engine{e1, e2}, r.List())
}

func TestRegistryGetMissingReturnsFalse(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Get(testutil.MustEngine(t).ID)
	assert.False(t, ok)
}

func TestRegistryRegisterNilIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Register(nil)
	assert.Empty(t, r.List())
}

func TestKillAllClearsBeforeStopTakesEffect(t *testing.T) {
	r := NewRegistry()
	e := newTestEngine(t, 44100, 1, 8)
	sink := &testutil.FakeSink{}
	activate(e, sink)
	e.AddGenerator(generators.NewConst(1.0))
	e.runBlock()
	require.False(t, allZero(sink.Blocks[0]), "generator must be audible before KillAll")

	r.Register(e)
	r.KillAll()

	// KillAll calls Clear then Stop; Stop only waits on a loop started via
	// Start, so the clear flag set by Clear is still pending here. It is
	// observed at the end of the next processed block (which still mixes the
	// generator), so the block after that is silent.
	e.runBlock()
	e.runBlock()
	assert.True(t, allZero(sink.Blocks[len(sink.Blocks)-1]), "Clear must take effect even though Stop already flipped status")
	assert.Equal(t, StatusStopped, e.Status())
}

func TestKillAllLeavesEnginesRegistered(t *testing.T) {
	r := NewRegistry()
	e := testutil.MustEngine(t)
	r.Register(e)

	r.KillAll()

	_, ok := r.Get(e.ID)
	assert.True(t, ok, "KillAll stops engines but does not forget them")
}

func TestClearAllEnginesForgetsHandlesButLeavesThemUsable(t *testing.T) {
	r := NewRegistry()
	e := testutil.MustEngine(t)
	r.Register(e)

	r.ClearAllEngines()

	_, ok := r.Get(e.ID)
	assert.False(t, ok, "ClearAllEngines forgets every engine")
	assert.Empty(t, r.List())

	// The handle obtained before ClearAllEngines remains valid to call;
	// the registry has no way to revoke it, only to stop tracking it.
	assert.NotPanics(t, func() { e.Status() })
	assert.Equal(t, StatusStopped, e.Status())
}

