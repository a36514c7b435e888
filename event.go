package sonora

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

// EventResult is the tagged return value of an Event's thunk. The engine
// interprets it deterministically:
//
//   - Generator: add it to the engine's pending-generators queue.
//   - *Event: append it to the event list's pending buffer.
//   - []EventResult: recurse over each element.
//   - anything else (including nil): ignored.
//
// This mirrors the source system's runtime type dispatch on an event's
// return value without needing any language-level reflection.
type EventResult interface{}

// EventFn is the thunk a scheduled Event invokes when it fires.
type EventFn func(args ...interface{}) EventResult

// Event is a single `(beat, thunk)` entry in an EventList. Two events with
// equal Beat fire in the order they were added (or, for events produced by
// another event's thunk during the same Advance call, the order they were
// produced).
type Event struct {
	Beat float64
	Fn   EventFn
	Args []interface{}

	seq uint64 // assigned on enqueue; breaks ties in Beat order
}

// NewEvent constructs an Event. Use AddEvents (or Engine.AddEvents) to
// schedule it.
func NewEvent(beat float64, fn EventFn, args ...interface{}) *Event {
	return &Event{Beat: beat, Fn: fn, Args: args}
}

// eventHeap is a min-heap of *Event ordered by (Beat, seq).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Beat != h[j].Beat {
		return h[i].Beat < h[j].Beat
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*Event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventList is a time-ordered collection of beat-stamped thunks, advanced
// once per engine block. cur_beat, tempo and the sorted store are guarded by
// mu; only Advance and Clear touch the sorted store, while pending is its own thread-safe drop-box so producers never need to
// take the scheduler's lock.
type EventList struct {
	pending pendingQueue[*Event]
	seq     atomic.Uint64

	mu       sync.Mutex
	curBeat  float64
	tempo    float64 // beats per minute
	sorted   eventHeap
	diagnose ErrorHandler
}

// NewEventList creates an EventList at beat 0 with the given initial tempo.
func NewEventList(tempo float64) *EventList {
	el := &EventList{tempo: tempo}
	heap.Init(&el.sorted)
	return el
}

// Add appends events to the pending buffer; they are merged into the sorted
// store on the next Advance call.
func (el *EventList) Add(events ...*Event) {
	for _, e := range events {
		if e == nil {
			continue
		}
		e.seq = el.seq.Add(1)
	}
	el.pending.Add(events...)
}

// Clear removes all pending and scheduled events.
func (el *EventList) Clear() {
	el.pending.Clear()
	el.mu.Lock()
	el.sorted = el.sorted[:0]
	el.mu.Unlock()
}

// SetTempo sets the tempo in beats per minute.
func (el *EventList) SetTempo(bpm float64) {
	el.mu.Lock()
	el.tempo = bpm
	el.mu.Unlock()
}

// Tempo returns the current tempo in beats per minute.
func (el *EventList) Tempo() float64 {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.tempo
}

// Now returns the current beat.
func (el *EventList) Now() float64 {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.curBeat
}

// Advance is the scheduler's per-block step. It merges pending events,
// fires everything due at or before the current beat (interpreting cascaded
// results via enqueueGenerator for new generators), advances cur_beat by
// nsamples worth of beats at the current tempo, and reports whether any
// event — pending or scheduled — remains.
//
// enqueueGenerator is called synchronously, on the caller's goroutine (the
// audio thread), for every Generator an event's thunk produces.
func (el *EventList) Advance(ctx *BlockContext, nsamples uint32, enqueueGenerator func(Generator)) bool {
	el.mu.Lock()
	defer el.mu.Unlock()

	for {
		for _, e := range el.pending.Drain() {
			heap.Push(&el.sorted, e)
		}
		if el.sorted.Len() == 0 || el.sorted[0].Beat > el.curBeat {
			break
		}
		ev := heap.Pop(&el.sorted).(*Event)
		result := el.fire(ev)
		el.interpret(result, enqueueGenerator)
	}

	if el.tempo != 0 {
		el.curBeat += float64(nsamples) * (el.tempo / 60) / float64(ctx.SampleRate)
	}

	return el.sorted.Len() > 0 || el.pending.Len() > 0
}

// fire invokes an event's thunk, converting a panic into a dropped event
// (nil result) so a single bad event can never take down the audio thread.
func (el *EventList) fire(ev *Event) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			if el.diagnose != nil {
				el.diagnose.HandleError(panicToError(r), "event fire")
			}
			result = nil
		}
	}()
	if ev.Fn == nil {
		return nil
	}
	return ev.Fn(ev.Args...)
}

func (el *EventList) interpret(result EventResult, enqueueGenerator func(Generator)) {
	switch v := result.(type) {
	case nil:
		return
	case Generator:
		if enqueueGenerator != nil {
			enqueueGenerator(v)
		}
	case *Event:
		el.Add(v)
	case []EventResult:
		for _, sub := range v {
			el.interpret(sub, enqueueGenerator)
		}
	default:
		// anything else is ignored, per spec
	}
}

// SetDiagnostics installs the side channel used to surface event faults.
func (el *EventList) SetDiagnostics(h ErrorHandler) {
	el.mu.Lock()
	el.diagnose = h
	el.mu.Unlock()
}
