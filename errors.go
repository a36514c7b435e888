package sonora

import (
	"errors"
	"fmt"

	charmlog "github.com/charmbracelet/log"
)

// Configuration errors, returned by NewEngine. The engine is never handed
// back in a half-initialised state; construction either fully succeeds or
// fails loudly.
var (
	ErrInvalidSampleRate = errors.New("sonora: sample rate must be positive")
	ErrInvalidBlockSize  = errors.New("sonora: block size must be positive")
	ErrInvalidChannels   = errors.New("sonora: channel count must be positive")
	ErrSinkRequired      = errors.New("sonora: a sink is required to start an engine")
)

// ErrorHandler receives diagnostics for faults caught at the audio-thread
// boundary (a generator or control callback that panicked or returned an
// error). It is an optional side channel only: the engine itself never
// blocks on it and never lets it influence control flow. Faults are always
// silently converted to "drop the producer" regardless of what the handler
// does.
type ErrorHandler interface {
	HandleError(err error, context string)
}

// NopErrorHandler discards every diagnostic. Use it to opt out of the side
// channel entirely.
type NopErrorHandler struct{}

// HandleError implements ErrorHandler.
func (NopErrorHandler) HandleError(error, string) {}

// DefaultErrorHandler logs diagnostics through charmbracelet/log at debug
// level, since a dropped generator is expected operation, not an engine
// failure.
type DefaultErrorHandler struct {
	logger *charmlog.Logger
}

// NewDefaultErrorHandler returns a DefaultErrorHandler writing to the given
// logger, or a fresh default logger when nil.
func NewDefaultErrorHandler(logger *charmlog.Logger) *DefaultErrorHandler {
	if logger == nil {
		logger = charmlog.Default()
	}
	return &DefaultErrorHandler{logger: logger}
}

// HandleError implements ErrorHandler.
func (h *DefaultErrorHandler) HandleError(err error, context string) {
	if h == nil || h.logger == nil || err == nil {
		return
	}
	h.logger.Debug("dropped", "context", context, "err", err)
}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
