// Package generators holds a handful of minimal Generator implementations
// used by the CLI's add_afunc demo command and by the engine's own tests.
// It is deliberately not a DSP primitive library — oscillators, filters and
// envelopes are out of scope for this module and are expected to live in an
// external package consumed only through sonora.Generator.
package generators

import "github.com/aural/sonora"

// NewConst builds a mono constant-value generator that emits the same
// sample value every block, forever. Useful for DC-offset and mixing tests.
func NewConst(value float64) sonora.Generator {
	return sonora.GeneratorFunc(func(ctx *sonora.BlockContext) sonora.GenOutput {
		buf := make([]float64, ctx.BlockSize)
		for i := range buf {
			buf[i] = value
		}
		return sonora.Mono(buf)
	})
}

// NewConstMulti builds a multi-channel constant-value generator; values
// must have exactly as many entries as the engine has channels.
func NewConstMulti(values []float64) sonora.Generator {
	return sonora.GeneratorFunc(func(ctx *sonora.BlockContext) sonora.GenOutput {
		bufs := make([][]float64, len(values))
		for ch, v := range values {
			buf := make([]float64, ctx.BlockSize)
			for i := range buf {
				buf[i] = v
			}
			bufs[ch] = buf
		}
		return sonora.Multi(bufs)
	})
}

// NewDecay builds a mono generator that starts at value and multiplies it
// by factor every block, finishing (GenDone) once the magnitude drops below
// floor. It's a stand-in for an envelope generator, just enough to exercise
// the engine's GenDone/removal path deterministically in tests.
func NewDecay(value, factor, floor float64) sonora.Generator {
	cur := value
	return sonora.GeneratorFunc(func(ctx *sonora.BlockContext) sonora.GenOutput {
		if abs(cur) < floor {
			return sonora.Done
		}
		buf := make([]float64, ctx.BlockSize)
		for i := range buf {
			buf[i] = cur
		}
		cur *= factor
		return sonora.Mono(buf)
	})
}

// NewCountedBlocks builds a mono silent generator that finishes after n
// blocks, for tests that need a generator with a known, finite lifetime.
func NewCountedBlocks(n int) sonora.Generator {
	remaining := n
	return sonora.GeneratorFunc(func(ctx *sonora.BlockContext) sonora.GenOutput {
		if remaining <= 0 {
			return sonora.Done
		}
		remaining--
		return sonora.Mono(make([]float64, ctx.BlockSize))
	})
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
