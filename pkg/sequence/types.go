// Package sequence converts tick-indexed MIDI event streams into a
// time-indexed musical representation and derives analysis products
// from it: note lists per instrument, piano-roll and chroma matrices,
// onset arrays, and synthesized audio.
package sequence

import "fmt"

// EventType identifies the kind of a decoded MIDI event.
type EventType int

const (
	EventOther EventType = iota
	EventSetTempo
	EventProgramChange
	EventNoteOn
	EventNoteOff
	EventPitchWheel
)

// Event is a single decoded MIDI event with an absolute tick. Only the
// fields relevant to the event type are meaningful; the rest are zero.
type Event struct {
	Type     EventType
	Tick     int
	Channel  uint8   // 0-15, channel voice events only
	BPM      float64 // Set Tempo
	Program  uint8   // Program Change
	Pitch    uint8   // Note On / Note Off
	Velocity uint8   // Note On / Note Off
	Bend     int16   // Pitch Wheel, 14-bit centered (-8192..8191)
}

// Track is a tick-ordered sequence of events, as handed over by the
// file loader.
type Track []Event

// Note is a single sounding event with absolute times in seconds.
// Zero-length notes (Start == End) are legal.
type Note struct {
	Velocity uint8
	Pitch    uint8
	Start    float64
	End      float64
}

func (n Note) String() string {
	return fmt.Sprintf("Note(start=%f, end=%f, pitch=%d, velocity=%d)",
		n.Start, n.End, n.Pitch, n.Velocity)
}

// Duration returns the length of the note in seconds.
func (n Note) Duration() float64 {
	return n.End - n.Start
}

// PitchBend is one pitch wheel reading: an offset in semitones at an
// absolute time.
type PitchBend struct {
	Time      float64
	Semitones float64
}

// Instrument holds the notes and pitch-bend timeline for one
// (program, drum-flag) pair. Channel 10 (zero-indexed 9) is always a
// drum instrument regardless of program. Notes appear in the order
// their note-off events arrived, which is not necessarily time order.
type Instrument struct {
	Program    uint8
	IsDrum     bool
	Notes      []Note
	PitchBends []PitchBend
}

func (inst *Instrument) String() string {
	return fmt.Sprintf("Instrument(program=%d, is_drum=%v, notes=%d)",
		inst.Program, inst.IsDrum, len(inst.Notes))
}

// Name returns the General MIDI name for the instrument's program, or
// "Drums" for drum instruments.
func (inst *Instrument) Name() string {
	if inst.IsDrum {
		return "Drums"
	}
	return GMProgramName(inst.Program)
}

// EndTime returns the end time of the instrument's last-ending note,
// or 0 if it has no notes.
func (inst *Instrument) EndTime() float64 {
	var end float64
	for _, n := range inst.Notes {
		if n.End > end {
			end = n.End
		}
	}
	return end
}
