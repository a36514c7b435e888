package sonora

// BlockContext carries the ambient per-block parameters every Generator and
// CFunc observes while it runs. The engine loop builds one value per block
// and passes it by reference through every Pull/CFunc call for that block;
// it must never be retained past the call it was passed to.
//
// Generators allocated against one engine stay portable to an engine of a
// different configuration precisely because they read sample rate, block
// size and channel count from here rather than from their own fields.
type BlockContext struct {
	SampleRate      uint32
	BlockSize       uint32
	Nchnls          uint32
	CurrentBlockNum uint64
}
