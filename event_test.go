package sonora

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCtx(sr, bs, ch uint32) *BlockContext {
	return &BlockContext{SampleRate: sr, BlockSize: bs, Nchnls: ch}
}

func TestAdvanceIncreasesCurBeatExactly(t *testing.T) {
	el := NewEventList(60) // 1 beat per second
	ctx := testCtx(44100, 44100, 1)

	el.Advance(ctx, 44100, nil)
	assert.InDelta(t, 1.0, el.Now(), 1e-9)

	el.Advance(ctx, 44100, nil)
	assert.InDelta(t, 2.0, el.Now(), 1e-9)
}

func TestEventFiresOnlyOnceCurBeatReachesIt(t *testing.T) {
	// tempo 60, sr=44100, bs=44100 -> 1 beat per block.
	el := NewEventList(60)
	ctx := testCtx(44100, 44100, 1)

	fired := 0
	el.Add(NewEvent(1.0, func(...interface{}) EventResult {
		fired++
		return nil
	}))

	el.Advance(ctx, 44100, nil) // block 0: checked against cur_beat==0, then cur_beat -> 1
	assert.Equal(t, 0, fired, "event must not fire in the block whose check predates reaching its beat")

	el.Advance(ctx, 44100, nil) // block 1: checked against cur_beat==1, fires
	assert.Equal(t, 1, fired)
}

func TestEventFiresLaterWithSmallerBlockSize(t *testing.T) {
	el := NewEventList(60)
	ctx := testCtx(44100, 22050, 1)

	fired := 0
	el.Add(NewEvent(1.0, func(...interface{}) EventResult {
		fired++
		return nil
	}))

	el.Advance(ctx, 22050, nil) // block 0: checked against cur_beat==0; cur_beat -> 0.5
	assert.Equal(t, 0, fired)
	el.Advance(ctx, 22050, nil) // block 1: checked against cur_beat==0.5; cur_beat -> 1.0
	assert.Equal(t, 0, fired, "the check happens before cur_beat is advanced for this block")
	el.Advance(ctx, 22050, nil) // block 2: checked against cur_beat==1.0, fires
	assert.Equal(t, 1, fired, "fires during block 2, once the check sees cur_beat reach 1.0")
}

func TestEqualBeatEventsFireInInsertionOrder(t *testing.T) {
	el := NewEventList(600000) // huge tempo so everything is already due
	ctx := testCtx(44100, 64, 1)

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		el.Add(NewEvent(0, func(...interface{}) EventResult {
			order = append(order, i)
			return nil
		}))
	}
	el.Advance(ctx, 64, nil)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestCascadedEventAtOrBeforeCurBeatFiresSameBlock(t *testing.T) {
	el := NewEventList(60)
	ctx := testCtx(44100, 44100, 1)

	fired := 0
	var second *Event
	second = NewEvent(0, func(...interface{}) EventResult {
		fired++
		return nil
	})

	el.Add(NewEvent(0, func(...interface{}) EventResult {
		fired++
		return second // cascaded event also due now; must fire this same Advance call
	}))

	el.Advance(ctx, 44100, nil)
	assert.Equal(t, 2, fired)
}

func TestNoEventAfterCurBeatFiresInSameBlock(t *testing.T) {
	el := NewEventList(60)
	ctx := testCtx(44100, 44100, 1)

	fired := false
	el.Add(NewEvent(5.0, func(...interface{}) EventResult {
		fired = true
		return nil
	}))
	el.Advance(ctx, 44100, nil) // cur_beat -> 1.0, event at beat 5 must not fire
	assert.False(t, fired)
}

func TestAdvanceForwardsGeneratorResultToCallback(t *testing.T) {
	el := NewEventList(600000)
	ctx := testCtx(44100, 64, 1)

	wantGen := GeneratorFunc(func(*BlockContext) GenOutput { return Done })
	el.Add(NewEvent(0, func(...interface{}) EventResult {
		return wantGen
	}))

	var got []Generator
	el.Advance(ctx, 64, func(g Generator) { got = append(got, g) })
	require.Len(t, got, 1)
}

func TestAdvanceRecursesIntoManyResults(t *testing.T) {
	el := NewEventList(600000)
	ctx := testCtx(44100, 64, 1)

	fired := 0
	el.Add(NewEvent(0, func(...interface{}) EventResult {
		return []EventResult{
			nil,
			NewEvent(0, func(...interface{}) EventResult { fired++; return nil }),
			NewEvent(0, func(...interface{}) EventResult { fired++; return nil }),
		}
	}))
	el.Advance(ctx, 64, nil)
	assert.Equal(t, 2, fired)
}

func TestFaultingEventIsDroppedNotPropagated(t *testing.T) {
	el := NewEventList(600000)
	ctx := testCtx(44100, 64, 1)

	el.Add(NewEvent(0, func(...interface{}) EventResult {
		panic("boom")
	}))

	assert.NotPanics(t, func() {
		el.Advance(ctx, 64, nil)
	})
}

func TestTemporalRecursionFiresOncePerBeatNeverBacksUp(t *testing.T) {
	el := NewEventList(60)
	ctx := testCtx(44100, 44100, 1) // 1 block == 1 beat

	var fires []float64
	target := 0.0
	var cell *RecurCell
	cell = NewRecurCell(func(...interface{}) EventResult {
		fires = append(fires, target)
		target += 1
		return NewEvent(target, cell.Fn())
	})
	el.Add(NewEvent(target, cell.Fn()))

	for i := 0; i < 5; i++ {
		el.Advance(ctx, 44100, nil)
	}
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, fires, "exactly one firing per beat, never more than one per block")
}
