package sonora

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// OfflineSink accumulates every block's PCM into memory and, on Close,
// writes it out as a WAV file matching the engine configuration it was
// opened with.
type OfflineSink struct {
	path       string
	sampleRate int
	nchnls     int
	samples    []int
}

// NewOfflineSink prepares an in-memory sink that will write path on Close.
func NewOfflineSink(path string, sampleRate, nchnls uint32) *OfflineSink {
	return &OfflineSink{path: path, sampleRate: int(sampleRate), nchnls: int(nchnls)}
}

// Write appends one block's interleaved little-endian int16 PCM to the
// in-memory buffer.
func (s *OfflineSink) Write(pcm []byte) error {
	if len(pcm)%2 != 0 {
		return fmt.Errorf("sonora: offline sink received an odd-length buffer")
	}
	n := len(pcm) / 2
	if cap(s.samples)-len(s.samples) < n {
		grown := make([]int, len(s.samples), len(s.samples)+n)
		copy(grown, s.samples)
		s.samples = grown
	}
	for i := 0; i < n; i++ {
		s.samples = append(s.samples, int(int16(binary.LittleEndian.Uint16(pcm[2*i:]))))
	}
	return nil
}

// Close writes the accumulated samples to a WAV file at s.path and releases
// the in-memory buffer.
func (s *OfflineSink) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("sonora: create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, s.sampleRate, 16, s.nchnls, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{SampleRate: s.sampleRate, NumChannels: s.nchnls},
		Data:           s.samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("sonora: write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("sonora: close wav encoder: %w", err)
	}
	s.samples = nil
	return nil
}

// RenderToDisk drives the engine's offline loop against an OfflineSink
// until termination (advance reports no remaining events *and* the
// pre-cfunc, generator and post-cfunc lists are all empty after their
// phase), then emits path as a WAV file and prints the elapsed render time
// — preserved for compatibility with existing scripts that scrape it.
//
// A graph containing an infinite generator (one that never returns GenDone)
// never satisfies the termination condition and RenderToDisk will not
// return; callers needing a hard cap should pass a non-zero maxBlocks.
func (e *Engine) RenderToDisk(path string, maxBlocks uint64) error {
	sink := NewOfflineSink(path, e.sampleRate, e.nchnls)
	e.mu.Lock()
	e.sink = sink
	e.status.Store(int32(StatusRunning))
	e.mu.Unlock()

	start := time.Now()
	for {
		remain := e.runBlock()
		if !remain {
			break
		}
		if maxBlocks != 0 && e.blockNum.Load() >= maxBlocks {
			break
		}
	}
	e.status.Store(int32(StatusStopped))

	if err := sink.Close(); err != nil {
		return err
	}
	fmt.Printf("%.3fs\n", time.Since(start).Seconds())
	return nil
}
