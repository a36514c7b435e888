package sonora

import "math"

// The functions below are the event-list client API: the surface a
// live-coding / REPL layer builds on top of the core scheduler. None of
// them touch EventList internals beyond what Now/Tempo/Add already expose.

// EventAt constructs a scheduled Event; it's a thin, named alternative to
// NewEvent for callers that prefer the client-API vocabulary.
func EventAt(fn EventFn, startBeat float64, args ...interface{}) *Event {
	return NewEvent(startBeat, fn, args...)
}

// AddEvents schedules events on engine's event list.
func AddEvents(engine *Engine, events ...*Event) {
	engine.AddEvents(events...)
}

// NextBeat returns how many beats from now until the next multiple of b,
// relative to el's current beat: ceil(now/b)*b - now.
func NextBeat(el *EventList, b float64) float64 {
	now := el.Now()
	return math.Ceil(now/b)*b - now
}

// Beats converts n beats to seconds at el's current tempo.
func Beats(el *EventList, n float64) float64 {
	return n * 60 / el.Tempo()
}

// BeatMod returns round(t mod m), the usual way a beat position is folded
// into a fixed-length musical cycle.
func BeatMod(t, m float64) float64 {
	return math.Round(math.Mod(t, m))
}
