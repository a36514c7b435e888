package sonora

// bus accumulates one block's worth of mixed samples and quantises them to
// interleaved 16-bit PCM. It is owned exclusively by the audio thread; its
// buffers are preallocated once and reused every block so mixing never
// allocates on the hot path.
type bus struct {
	nchnls    uint32
	blockSize uint32
	floatBuf  []float64 // len == blockSize*nchnls, channel-interleaved
	byteBuf   []byte    // len == 2*len(floatBuf)
}

func newBus(blockSize, nchnls uint32) *bus {
	outSize := blockSize * nchnls
	return &bus{
		nchnls:    nchnls,
		blockSize: blockSize,
		floatBuf:  make([]float64, outSize),
		byteBuf:   make([]byte, 2*outSize),
	}
}

// reset zeroes the float buffer; it must be called before mixing any
// generator's output into a fresh block.
func (b *bus) reset() {
	for i := range b.floatBuf {
		b.floatBuf[i] = 0
	}
}

// mixMono sums a single-channel buffer into channel 0. When the bus itself
// is mono (nchnls == 1) the stride collapses to 1, so mono generators in a
// mono engine behave exactly like a plain accumulate.
func (b *bus) mixMono(buf []float64) {
	stride := int(b.nchnls)
	for i, s := range buf {
		idx := i * stride
		if idx >= len(b.floatBuf) {
			break
		}
		b.floatBuf[idx] += s
	}
}

// mixMulti sums an ordered set of per-channel buffers, one per output
// channel, into the bus.
func (b *bus) mixMulti(bufs [][]float64) {
	stride := int(b.nchnls)
	for ch, buf := range bufs {
		if ch >= stride {
			break
		}
		for i, s := range buf {
			idx := i*stride + ch
			if idx >= len(b.floatBuf) {
				break
			}
			b.floatBuf[idx] += s
		}
	}
}

// quantize converts the mixed float buffer to little-endian signed 16-bit
// PCM, saturating at [-1, 1], and returns the reused byte buffer.
func (b *bus) quantize() []byte {
	for i, x := range b.floatBuf {
		s := quantizeSample(x)
		b.byteBuf[2*i] = byte(s)
		b.byteBuf[2*i+1] = byte(s >> 8)
	}
	return b.byteBuf
}

// quantizeSample converts x to a signed 16-bit integer as x * 32767
// truncated toward zero, saturating at the extremes: x >= 1 gives 32767 and
// x <= -1 gives -32768.
func quantizeSample(x float64) int16 {
	switch {
	case x >= 1.0:
		return 32767
	case x <= -1.0:
		return -32768
	default:
		return int16(x * 32767)
	}
}
