// Package midifile loads Standard MIDI Files into the event model
// consumed by package sequence. Byte-level decoding is delegated to
// gomidi's smf package; this package absolutizes delta ticks and maps
// decoded messages onto the closed event set.
package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/james-see/midiroll/pkg/sequence"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ErrTimeFormat is returned for files using SMPTE timecode instead of
// metric ticks.
var ErrTimeFormat = errors.New("unsupported SMF time format (SMPTE timecode)")

// Load decodes SMF data and returns the tick resolution (ticks per
// quarter note) together with one tick-absolutized event track per SMF
// track.
func Load(data []byte) (int, []sequence.Track, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return 0, nil, ErrTimeFormat
	}
	resolution := int(ticks.Resolution())

	tracks := make([]sequence.Track, len(s.Tracks))
	for i, track := range s.Tracks {
		tick := 0
		for _, ev := range track {
			tick += int(ev.Delta)
			tracks[i] = append(tracks[i], convertMessage(ev.Message, tick))
		}
	}
	return resolution, tracks, nil
}

// LoadFile reads and decodes an SMF file from disk.
func LoadFile(path string) (int, []sequence.Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return Load(data)
}

// convertMessage maps one decoded message onto the event model.
// Messages with no analysis meaning become EventOther so their ticks
// still count toward the file's extent.
func convertMessage(msg smf.Message, tick int) sequence.Event {
	var (
		channel  uint8
		key      uint8
		velocity uint8
		program  uint8
		bpm      float64
		relative int16
		absolute uint16
	)

	switch {
	case msg.GetMetaTempo(&bpm):
		return sequence.Event{Type: sequence.EventSetTempo, Tick: tick, BPM: bpm}
	case msg.GetProgramChange(&channel, &program):
		return sequence.Event{Type: sequence.EventProgramChange, Tick: tick, Channel: channel, Program: program}
	case msg.GetNoteOn(&channel, &key, &velocity):
		// Velocity 0 stays a note-on here; the reconstruction applies
		// the zero-velocity-off convention itself.
		return sequence.Event{Type: sequence.EventNoteOn, Tick: tick, Channel: channel, Pitch: key, Velocity: velocity}
	case msg.GetNoteOff(&channel, &key, &velocity):
		return sequence.Event{Type: sequence.EventNoteOff, Tick: tick, Channel: channel, Pitch: key, Velocity: velocity}
	case msg.GetPitchBend(&channel, &relative, &absolute):
		return sequence.Event{Type: sequence.EventPitchWheel, Tick: tick, Channel: channel, Bend: relative}
	default:
		return sequence.Event{Type: sequence.EventOther, Tick: tick}
	}
}
