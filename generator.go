package sonora

// GenKind tags the shape of a GenOutput.
type GenKind int

const (
	// GenMono carries a single-channel buffer, summed into bus channel 0
	// (or with stride 1 when the engine itself is mono).
	GenMono GenKind = iota
	// GenMulti carries exactly Nchnls buffers, one per output channel.
	GenMulti
	// GenDone signals the generator has finished; it is removed from the
	// active set and will not be polled again.
	GenDone
)

// GenOutput is the tagged return value of a single Pull call.
type GenOutput struct {
	Kind  GenKind
	Mono  []float64
	Multi [][]float64
}

// Done is the canonical "finished, remove me" result.
var Done = GenOutput{Kind: GenDone}

// Mono wraps a single-channel block.
func Mono(buf []float64) GenOutput { return GenOutput{Kind: GenMono, Mono: buf} }

// Multi wraps a multi-channel block; it must contain exactly Nchnls buffers
// in channel order.
func Multi(bufs [][]float64) GenOutput { return GenOutput{Kind: GenMulti, Multi: bufs} }

// Generator is the uniform pull-based contract every audio producer
// implements. Pull is invoked exactly once per engine block while the
// generator is active, on the engine's single audio thread, and may assume
// ctx is valid and unchanged for the duration of the call. Any panic or
// error raised by an implementation's Pull is caught at the engine boundary
// and treated as GenDone — a fault never propagates out of the audio loop.
type Generator interface {
	Pull(ctx *BlockContext) GenOutput
}

// GeneratorFunc adapts a plain function to the Generator interface, for
// small generators that need no state beyond what's captured in a closure.
type GeneratorFunc func(ctx *BlockContext) GenOutput

// Pull implements Generator.
func (f GeneratorFunc) Pull(ctx *BlockContext) GenOutput { return f(ctx) }

// safePull invokes g.Pull, converting a panic into GenDone so that a single
// misbehaving generator can never take down the audio thread.
func safePull(g Generator, ctx *BlockContext, diag ErrorHandler) (out GenOutput) {
	defer func() {
		if r := recover(); r != nil {
			if diag != nil {
				diag.HandleError(panicToError(r), "generator pull")
			}
			out = Done
		}
	}()
	return g.Pull(ctx)
}
