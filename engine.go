package sonora

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Status is the engine's run state.
type Status int32

const (
	StatusStopped Status = iota
	StatusRunning
)

func (s Status) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "stopped"
}

// CFunc is a control callback: a per-block thunk invoked for its side
// effects only. Phase (pre/post) is determined entirely by which queue it
// was added to, not by anything on the value itself. A CFunc that panics or
// returns an error is dropped silently and not retained for the next block.
type CFunc func(ctx *BlockContext) error

// EngineConfig configures a new Engine. Zero values are invalid for
// SampleRate, BlockSize and Nchnls; NewEngine fails loudly rather than
// silently substituting defaults.
type EngineConfig struct {
	SampleRate   uint32
	Nchnls       uint32
	BlockSize    uint32
	Diagnostics  ErrorHandler // optional; defaults to NewDefaultErrorHandler(nil)
	InitialTempo float64      // beats per minute; defaults to 60 if zero
}

// Engine holds one audio-thread worth of mixing state: the four pending
// queues, the event list, the active generator/cfunc lists (owned
// exclusively by the audio thread), and the derived buffer sizes.
type Engine struct {
	ID uuid.UUID

	sampleRate uint32
	nchnls     uint32
	blockSize  uint32

	outBufferSize  uint32
	byteBufferSize uint32

	status    atomic.Int32
	clearFlag atomic.Bool
	blockNum  atomic.Uint64

	pendingGenerators pendingQueue[Generator]
	pendingPre        pendingQueue[CFunc]
	pendingPost       pendingQueue[CFunc]

	Events *EventList

	diagnostics ErrorHandler

	// Owned exclusively by the audio thread; never touched by any other
	// goroutine, so no lock is needed.
	activeGenerators []Generator
	activePre        []CFunc
	activePost       []CFunc
	bus              *bus

	mu       sync.Mutex // guards loopDone/sink swap around Start/Stop
	sink     Sink
	loopDone chan struct{}
}

// NewEngine validates the configuration and constructs a stopped Engine. It
// never returns a half-initialised Engine: any validation failure returns a
// nil Engine and a non-nil error.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.SampleRate == 0 {
		return nil, ErrInvalidSampleRate
	}
	if cfg.BlockSize == 0 {
		return nil, ErrInvalidBlockSize
	}
	if cfg.Nchnls == 0 {
		return nil, ErrInvalidChannels
	}

	tempo := cfg.InitialTempo
	if tempo == 0 {
		tempo = 60
	}

	diag := cfg.Diagnostics
	if diag == nil {
		diag = NewDefaultErrorHandler(nil)
	}

	events := NewEventList(tempo)
	events.SetDiagnostics(diag)

	e := &Engine{
		ID:             uuid.New(),
		sampleRate:     cfg.SampleRate,
		nchnls:         cfg.Nchnls,
		blockSize:      cfg.BlockSize,
		outBufferSize:  cfg.BlockSize * cfg.Nchnls,
		byteBufferSize: 2 * cfg.BlockSize * cfg.Nchnls,
		Events:         events,
		diagnostics:    diag,
		bus:            newBus(cfg.BlockSize, cfg.Nchnls),
	}
	e.status.Store(int32(StatusStopped))
	return e, nil
}

// SampleRate, Nchnls, BlockSize, OutBufferSize and ByteBufferSize expose the
// engine's immutable configuration.
func (e *Engine) SampleRate() uint32     { return e.sampleRate }
func (e *Engine) Nchnls() uint32         { return e.nchnls }
func (e *Engine) BlockSize() uint32      { return e.blockSize }
func (e *Engine) OutBufferSize() uint32  { return e.outBufferSize }
func (e *Engine) ByteBufferSize() uint32 { return e.byteBufferSize }

// Status reports whether the engine is currently running.
func (e *Engine) Status() Status { return Status(e.status.Load()) }

// CurrentBlockNum returns the block index about to be (or last) processed.
func (e *Engine) CurrentBlockNum() uint64 { return e.blockNum.Load() }

// AddGenerator enqueues a generator to become active on the next block. A
// no-op, by design, when the engine is stopped.
func (e *Engine) AddGenerator(g Generator) {
	if e.Status() != StatusRunning || g == nil {
		return
	}
	e.pendingGenerators.Add(g)
}

// AddPreCFunc enqueues a callback to run before generators mix each block.
func (e *Engine) AddPreCFunc(f CFunc) {
	if e.Status() != StatusRunning || f == nil {
		return
	}
	e.pendingPre.Add(f)
}

// AddPostCFunc enqueues a callback to run after generators mix each block.
func (e *Engine) AddPostCFunc(f CFunc) {
	if e.Status() != StatusRunning || f == nil {
		return
	}
	e.pendingPost.Add(f)
}

// AddEvents schedules events on the engine's event list. Unlike generators
// and cfuncs, events may be queued before Start so a graph is ready the
// instant the engine starts running.
func (e *Engine) AddEvents(events ...*Event) {
	e.Events.Add(events...)
}

// Clear is cooperative: it takes effect at the end of the current block,
// emptying all four pending queues and the event list and leaving the next
// block with an empty graph. Idempotent.
func (e *Engine) Clear() {
	e.clearFlag.Store(true)
}

// Start begins running the engine loop against sink on a dedicated
// goroutine. Calling Start on an already-running engine is a no-op.
func (e *Engine) Start(sink Sink) error {
	if sink == nil {
		return ErrSinkRequired
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if Status(e.status.Load()) == StatusRunning {
		return nil
	}
	e.sink = sink
	e.status.Store(int32(StatusRunning))
	done := make(chan struct{})
	e.loopDone = done
	go e.realtimeLoop(done)
	return nil
}

// Stop is cooperative: it flips status to stopped and waits for the audio
// thread to observe that at its next block boundary, flush and close the
// sink, and exit. Calling Stop on an already-stopped engine is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	running := Status(e.status.Load()) == StatusRunning
	done := e.loopDone
	e.mu.Unlock()
	if !running {
		return
	}
	e.status.Store(int32(StatusStopped))
	if done != nil {
		<-done
	}
}

// realtimeLoop drives blocks against a realtime Sink until Stop flips
// status, then flushes and closes the sink and prints a shutdown message
// for compatibility with existing scripts that scrape it.
func (e *Engine) realtimeLoop(done chan struct{}) {
	defer close(done)
	for Status(e.status.Load()) == StatusRunning {
		e.runBlock()
	}
	fmt.Println("stopping...")
	_ = e.sink.Close()
}

// runBlock executes one block: advance events, run pre-cfuncs, mix
// generators, run post-cfuncs, write PCM, honor a pending Clear, and bump
// the block counter. It returns whether any event remains on the event list
// or any of the generator, pre-cfunc and post-cfunc lists is still
// non-empty, which offline rendering uses to decide termination.
func (e *Engine) runBlock() bool {
	ctx := &BlockContext{
		SampleRate:      e.sampleRate,
		BlockSize:       e.blockSize,
		Nchnls:          e.nchnls,
		CurrentBlockNum: e.blockNum.Load(),
	}

	eventsRemain := e.Events.Advance(ctx, e.blockSize, e.pendingGenerators.Add)

	e.activePre = append(e.activePre, e.pendingPre.Drain()...)
	e.activePre = runCFuncs(ctx, e.activePre, e.diagnostics, "pre-cfunc")

	e.activeGenerators = append(e.activeGenerators, e.pendingGenerators.Drain()...)
	e.bus.reset()
	e.activeGenerators = mixGenerators(ctx, e.bus, e.activeGenerators, e.diagnostics)
	pcm := e.bus.quantize()

	e.activePost = append(e.activePost, e.pendingPost.Drain()...)
	e.activePost = runCFuncs(ctx, e.activePost, e.diagnostics, "post-cfunc")

	if e.sink != nil {
		if err := e.sink.Write(pcm); err != nil && e.diagnostics != nil {
			e.diagnostics.HandleError(err, "sink write")
		}
	}

	if e.clearFlag.Load() {
		e.pendingGenerators.Clear()
		e.pendingPre.Clear()
		e.pendingPost.Clear()
		e.Events.Clear()
		e.activeGenerators = nil
		e.activePre = nil
		e.activePost = nil
		e.clearFlag.Store(false)
		eventsRemain = false
	}

	e.blockNum.Add(1)
	return eventsRemain || len(e.activeGenerators) > 0 || len(e.activePre) > 0 || len(e.activePost) > 0
}

// runCFuncs invokes each callback in order, returning the subset that
// completed without panicking or returning an error; a callback that fails
// is silently dropped and not retained for the next block.
func runCFuncs(ctx *BlockContext, cfuncs []CFunc, diag ErrorHandler, label string) []CFunc {
	if len(cfuncs) == 0 {
		return cfuncs
	}
	retained := cfuncs[:0]
	for _, f := range cfuncs {
		if invokeCFunc(ctx, f, diag, label) {
			retained = append(retained, f)
		}
	}
	return retained
}

func invokeCFunc(ctx *BlockContext, f CFunc, diag ErrorHandler, label string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if diag != nil {
				diag.HandleError(panicToError(r), label)
			}
			ok = false
		}
	}()
	if err := f(ctx); err != nil {
		if diag != nil {
			diag.HandleError(err, label)
		}
		return false
	}
	return true
}

// mixGenerators polls every active generator exactly once, sums its output
// into b, and returns the subset that should remain active next block
// (polled, not GenDone, and not faulted).
func mixGenerators(ctx *BlockContext, b *bus, gens []Generator, diag ErrorHandler) []Generator {
	if len(gens) == 0 {
		return gens
	}
	retained := gens[:0]
	for _, g := range gens {
		out := safePull(g, ctx, diag)
		switch out.Kind {
		case GenDone:
			continue
		case GenMono:
			b.mixMono(out.Mono)
			retained = append(retained, g)
		case GenMulti:
			b.mixMulti(out.Multi)
			retained = append(retained, g)
		}
	}
	return retained
}
