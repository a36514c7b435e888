package sonora

import (
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Sink is the engine's output boundary: something willing to accept exactly
// ByteBufferSize bytes of interleaved little-endian 16-bit PCM per block.
// The engine never retries or applies backpressure on a Write failure; it
// just hands the error to the diagnostics side channel and moves on to the
// next block; underruns are the sink's concern.
type Sink interface {
	Write(pcm []byte) error
	Close() error
}

// RealtimeSink opens a low-latency output stream on the system's default
// output device and writes each block's PCM to it. It is grounded on the
// same Initialize/DefaultOutputDevice/LowLatencyParameters/OpenStream
// sequence used by other portaudio-backed playback engines, adapted to a
// fixed interleaved-int16 line format rather than a float32 table-player
// line.
type RealtimeSink struct {
	stream *portaudio.Stream
	out    []int16
}

// OpenRealtimeSink opens the default output device at sampleRate with
// nchnls channels and blockSize frames per buffer, started and ready to
// accept Write calls.
func OpenRealtimeSink(sampleRate, nchnls, blockSize uint32) (*RealtimeSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("sonora: portaudio init: %w", err)
	}

	dev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("sonora: default output device: %w", err)
	}

	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = int(nchnls)
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = int(blockSize)

	out := make([]int16, blockSize*nchnls)
	stream, err := portaudio.OpenStream(params, out)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("sonora: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("sonora: start stream: %w", err)
	}

	return &RealtimeSink{stream: stream, out: out}, nil
}

// Write decodes pcm (little-endian int16 frames, channel 0 first in each
// frame) into the stream's buffer and blocks until it's been played out.
// len(pcm) must equal 2*len(s.out); the engine guarantees this since out was
// sized from the same BlockSize/Nchnls the engine was built with.
func (s *RealtimeSink) Write(pcm []byte) error {
	if len(pcm) != 2*len(s.out) {
		return fmt.Errorf("sonora: realtime sink expected %d bytes, got %d", 2*len(s.out), len(pcm))
	}
	for i := range s.out {
		s.out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return s.stream.Write()
}

// Close stops and closes the stream and terminates portaudio.
func (s *RealtimeSink) Close() error {
	if s.stream == nil {
		return nil
	}
	err := s.stream.Close()
	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}
	return err
}
