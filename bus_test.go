package sonora

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeSample(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want int16
	}{
		{"dc-half", 0.5, 16383},
		{"saturate-positive", 2.0, 32767},
		{"saturate-negative", -2.0, -32768},
		{"zero", 0.0, 0},
		{"exact-positive-edge", 1.0, 32767},
		{"exact-negative-edge", -1.0, -32768},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, quantizeSample(c.in))
		})
	}
}

func TestBusResetZeroesFloatBuffer(t *testing.T) {
	b := newBus(4, 1)
	b.mixMono([]float64{1, 1, 1, 1})
	b.reset()
	for _, v := range b.floatBuf {
		require.Zero(t, v)
	}
}

func TestBusMixMonoMonoEngine(t *testing.T) {
	b := newBus(4, 1)
	b.reset()
	b.mixMono([]float64{0.25, 0.25, 0.25, 0.25})
	pcm := b.quantize()
	require.Len(t, pcm, 8)
	for i := 0; i < 4; i++ {
		got := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		assert.Equal(t, quantizeSample(0.25), got)
	}
}

func TestBusMixStereoChannel0And1(t *testing.T) {
	b := newBus(1, 2)
	b.reset()
	b.mixMono([]float64{0.25})                      // generator 1: mono -> channel 0
	b.mixMulti([][]float64{{0.25}, {0.25}})          // generator 2: stereo 0.25/0.25
	pcm := b.quantize()
	ch0 := int16(binary.LittleEndian.Uint16(pcm[0:]))
	ch1 := int16(binary.LittleEndian.Uint16(pcm[2:]))
	assert.Equal(t, quantizeSample(0.5), ch0)
	assert.Equal(t, quantizeSample(0.25), ch1)
}
