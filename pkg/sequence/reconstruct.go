package sequence

// drumChannel is the zero-indexed MIDI channel reserved for percussion
// (channel 10 in MIDI's one-indexed convention).
const drumChannel = 9

// pendingKey identifies an unmatched note-on while its note-off is
// still outstanding.
type pendingKey struct {
	program uint8
	isDrum  bool
	pitch   uint8
}

// pendingNote is the recorded onset for a pendingKey.
type pendingNote struct {
	start    float64
	velocity uint8
}

// trackState is the mutable state threaded through one track's
// reconstruction pass. It is reset for every track: program
// assignments and outstanding note-ons never carry across tracks.
type trackState struct {
	// programs maps each channel to its current program. Channels
	// without a Program Change event play program 0, per convention.
	programs [16]uint8
	pending  map[pendingKey]pendingNote
}

func newTrackState() *trackState {
	return &trackState{pending: make(map[pendingKey]pendingNote)}
}

// reconstruct consumes all tracks and produces the instrument list.
// Instruments are created lazily when the first completed note for a
// (program, drum-flag) pair is seen, and keep that first-seen order.
func reconstruct(tracks []Track, tm *TempoMap) []*Instrument {
	var instruments []*Instrument

	for _, track := range tracks {
		st := newTrackState()
		for _, e := range track {
			switch e.Type {
			case EventProgramChange:
				st.programs[e.Channel&0x0F] = e.Program

			case EventNoteOn:
				if e.Velocity == 0 {
					// Zero-velocity note-ons are note-offs.
					instruments = closeNote(instruments, st, e, tm)
					continue
				}
				key := pendingKey{
					program: st.programs[e.Channel&0x0F],
					isDrum:  e.Channel == drumChannel,
					pitch:   e.Pitch,
				}
				// A retrigger without an intervening note-off
				// overwrites the earlier onset, which is lost.
				st.pending[key] = pendingNote{
					start:    tm.TimeAt(e.Tick),
					velocity: e.Velocity,
				}

			case EventNoteOff:
				instruments = closeNote(instruments, st, e, tm)

			case EventPitchWheel:
				isDrum := e.Channel == drumChannel
				program := st.programs[e.Channel&0x0F]
				// Semitones at the conventional ±2 semitone device
				// range for full wheel deflection.
				bend := 2 * float64(e.Bend) / 8192.0
				if inst := findInstrument(instruments, program, isDrum); inst != nil {
					inst.PitchBends = append(inst.PitchBends, PitchBend{
						Time:      tm.TimeAt(e.Tick),
						Semitones: bend,
					})
				}
				// No instrument yet for this pair: the bend is
				// dropped, not an error.
			}
		}
	}

	return instruments
}

// closeNote matches a note-off against the pending table and, on a
// match, appends the completed note to its instrument, creating the
// instrument if needed. Unmatched offs are ignored.
func closeNote(instruments []*Instrument, st *trackState, e Event, tm *TempoMap) []*Instrument {
	key := pendingKey{
		program: st.programs[e.Channel&0x0F],
		isDrum:  e.Channel == drumChannel,
		pitch:   e.Pitch,
	}
	onset, ok := st.pending[key]
	if !ok {
		return instruments
	}
	delete(st.pending, key)

	note := Note{
		Velocity: onset.velocity,
		Pitch:    e.Pitch,
		Start:    onset.start,
		End:      tm.TimeAt(e.Tick),
	}

	inst := findInstrument(instruments, key.program, key.isDrum)
	if inst == nil {
		inst = &Instrument{Program: key.program, IsDrum: key.isDrum}
		instruments = append(instruments, inst)
	}
	inst.Notes = append(inst.Notes, note)
	return instruments
}

// findInstrument scans for the instrument matching (program, isDrum).
// The list stays small enough that a linear scan is fine, and the scan
// preserves first-seen creation order.
func findInstrument(instruments []*Instrument, program uint8, isDrum bool) *Instrument {
	for _, inst := range instruments {
		if inst.Program == program && inst.IsDrum == isDrum {
			return inst
		}
	}
	return nil
}
