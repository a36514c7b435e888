// Package testutil holds small helpers shared across sonora's test files:
// env-gated skips and a "small" engine config and fake sink for fast,
// deterministic block-loop tests.
package testutil

import (
	"os"
	"testing"

	"github.com/aural/sonora"
)

// SkipUnlessEnv skips the test unless the given env var equals want.
func SkipUnlessEnv(t *testing.T, key, want string) {
	t.Helper()
	if os.Getenv(key) != want {
		t.Skipf("skipped: set %s=%s to run", key, want)
	}
}

// IsCI reports whether running under a common CI environment.
func IsCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// SmallConfig returns an EngineConfig tuned for fast, deterministic tests:
// a small block size and a diagnostics sink that discards everything.
func SmallConfig() sonora.EngineConfig {
	return sonora.EngineConfig{
		SampleRate:  44100,
		Nchnls:      1,
		BlockSize:   64,
		Diagnostics: sonora.NopErrorHandler{},
	}
}

// MustEngine creates an engine with SmallConfig, failing the test on error.
func MustEngine(t *testing.T) *sonora.Engine {
	t.Helper()
	e, err := sonora.NewEngine(SmallConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

// FakeSink is an in-memory Sink that records every block it receives, for
// assertions in engine-loop tests.
type FakeSink struct {
	Blocks [][]byte
	Closed bool
}

// Write implements sonora.Sink.
func (s *FakeSink) Write(pcm []byte) error {
	cp := make([]byte, len(pcm))
	copy(cp, pcm)
	s.Blocks = append(s.Blocks, cp)
	return nil
}

// Close implements sonora.Sink.
func (s *FakeSink) Close() error {
	s.Closed = true
	return nil
}
