// Package midi is a thin client of sonora's event-list API, treating the
// live-coding helper layer as an external collaborator consumed only
// through now/tempo/add_events/event. It wires gitlab.com/gomidi/midi/v2
// for the message layer and github.com/rakyll/portmidi as the backing
// driver into a concrete, if small, use: a MIDI clock listener that
// estimates a BPM from incoming 0xF8 clock pulses and keeps an EventList's
// tempo in sync with it, and a note listener that turns note-on messages
// into scheduled sonora.Event values via a caller-supplied mapping.
//
// Nothing here is a general MIDI sequencer or file player; that stays out
// of scope for the core engine.
package midi

import (
	"fmt"
	"time"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers/portmididrv"

	"github.com/aural/sonora"
)

const clockStatus = 0xF8 // MIDI Timing Clock, 24 pulses per quarter note
const pulsesPerQuarterNote = 24

// ClockSource listens to a MIDI input port for timing-clock pulses and
// keeps an EventList's tempo current with the incoming clock.
type ClockSource struct {
	events     *sonora.EventList
	stopListen func()

	lastPulse time.Time
	pulseCnt  int
}

// NewClockSource opens portName on the portmidi driver and starts tracking
// its clock against events. Call Close to stop listening and release the
// port.
func NewClockSource(portName string, events *sonora.EventList) (*ClockSource, error) {
	drv, err := portmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("sonora/midi: open portmidi driver: %w", err)
	}

	in, err := midi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("sonora/midi: find input port %q: %w", portName, err)
	}

	cs := &ClockSource{events: events}

	stop, err := midi.ListenTo(in, cs.handle)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("sonora/midi: listen to %q: %w", portName, err)
	}
	cs.stopListen = stop
	return cs, nil
}

func (cs *ClockSource) handle(msg midi.Message, _ int32) {
	raw := msg.Bytes()
	if len(raw) == 0 || raw[0] != clockStatus {
		return
	}

	now := time.Now()
	if !cs.lastPulse.IsZero() {
		delta := now.Sub(cs.lastPulse)
		cs.pulseCnt++
		if cs.pulseCnt == pulsesPerQuarterNote {
			// A quarter note is pulsesPerQuarterNote pulses. delta covers
			// only the last pulse interval and is scaled by that count, so
			// the estimate assumes the pulses were evenly spaced.
			bpm := 60 / (delta.Seconds() * pulsesPerQuarterNote)
			if bpm > 0 {
				cs.events.SetTempo(bpm)
			}
			cs.pulseCnt = 0
		}
	}
	cs.lastPulse = now
}

// Close stops listening to the MIDI port.
func (cs *ClockSource) Close() {
	if cs.stopListen != nil {
		cs.stopListen()
	}
}

// NoteTrigger turns incoming note-on messages into events scheduled on
// events, via toEvent. It's the "cause"-equivalent bridge: a live MIDI
// controller driving the event list the same way a REPL call to add_events
// would.
type NoteTrigger struct {
	events     *sonora.EventList
	toEvent    func(channel, key, velocity uint8, now float64) *sonora.Event
	stopListen func()
}

// NewNoteTrigger opens portName and schedules toEvent's result on events
// for every note-on message received.
func NewNoteTrigger(portName string, events *sonora.EventList, toEvent func(channel, key, velocity uint8, now float64) *sonora.Event) (*NoteTrigger, error) {
	in, err := midi.FindInPort(portName)
	if err != nil {
		return nil, fmt.Errorf("sonora/midi: find input port %q: %w", portName, err)
	}

	nt := &NoteTrigger{events: events, toEvent: toEvent}
	stop, err := midi.ListenTo(in, nt.handle)
	if err != nil {
		return nil, fmt.Errorf("sonora/midi: listen to %q: %w", portName, err)
	}
	nt.stopListen = stop
	return nt, nil
}

func (nt *NoteTrigger) handle(msg midi.Message, _ int32) {
	var ch, key, vel uint8
	if !msg.GetNoteOn(&ch, &key, &vel) {
		return
	}
	ev := nt.toEvent(ch, key, vel, nt.events.Now())
	if ev != nil {
		nt.events.Add(ev)
	}
}

// Close stops listening to the MIDI port.
func (nt *NoteTrigger) Close() {
	if nt.stopListen != nil {
		nt.stopListen()
	}
}
