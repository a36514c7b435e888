package sonora

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBeat(t *testing.T) {
	el := NewEventList(60)
	el.curBeat = 1.25
	assert.InDelta(t, 0.75, NextBeat(el, 1), 1e-9)
	assert.InDelta(t, 2.75, NextBeat(el, 4), 1e-9)
}

func TestNextBeatAtExactMultipleIsZero(t *testing.T) {
	el := NewEventList(60)
	el.curBeat = 2.0
	assert.InDelta(t, 0, NextBeat(el, 1), 1e-9)
}

func TestBeatsConvertsToSecondsAtTempo(t *testing.T) {
	el := NewEventList(120) // 2 beats per second
	assert.InDelta(t, 2.0, Beats(el, 4), 1e-9) // 4 beats / 2bps = 2s
}

func TestBeatMod(t *testing.T) {
	assert.Equal(t, 1.0, BeatMod(5, 4))
	assert.Equal(t, 0.0, BeatMod(8, 4))
}
