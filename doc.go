// Package sonora is a block-based realtime audio synthesis engine. It mixes
// a dynamic population of pull-based audio generators into an interleaved
// PCM stream, driven by a beat-keyed event scheduler, and renders either to
// a realtime audio line or to an offline WAV file.
//
// The engine does not ship DSP primitives (oscillators, filters, envelopes):
// callers supply their own Generator implementations. See package
// generators for a handful of minimal ones used by the CLI and tests.
package sonora
