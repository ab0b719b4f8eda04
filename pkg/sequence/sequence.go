package sequence

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBeatTracking is returned by Beats: beat estimation is an
// intentionally unsupported surface.
var ErrBeatTracking = errors.New("beat tracking is not supported")

// Sequence is the time-indexed form of a MIDI file: a tempo map plus
// the instruments reconstructed from its tracks. It is built once and
// read-only afterwards.
type Sequence struct {
	// Instruments in the order their first completed note was seen.
	Instruments []*Instrument

	tempoMap *TempoMap
	warnings []string
}

// New builds a Sequence from tick-absolutized tracks. resolution is in
// ticks per quarter note; tempo is taken from track 0 only. Malformed
// input (unmatched note-offs, retriggers, bends before any completed
// note) is tolerated and reconstruction is best-effort; the only
// diagnostic surfaced is a warning when tempo events appear outside
// track 0.
func New(resolution int, tracks []Track) (*Sequence, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %d", resolution)
	}

	maxTick := 0
	for _, track := range tracks {
		for _, e := range track {
			if e.Tick > maxTick {
				maxTick = e.Tick
			}
		}
	}
	maxTick++

	var tempoTrack Track
	if len(tracks) > 0 {
		tempoTrack = tracks[0]
	}

	s := &Sequence{tempoMap: NewTempoMap(resolution, tempoTrack, maxTick)}

	strayTempos := 0
	for i, track := range tracks {
		if i == 0 {
			continue
		}
		for _, e := range track {
			if e.Type == EventSetTempo {
				strayTempos++
			}
		}
	}
	if strayTempos > 0 {
		s.warnings = append(s.warnings, fmt.Sprintf(
			"%d tempo change events found outside track 0; not a valid type 0 or 1 file, timing may be wrong", strayTempos))
	}

	s.Instruments = reconstruct(tracks, s.tempoMap)
	return s, nil
}

// Warnings returns the non-fatal diagnostics collected while building
// the sequence.
func (s *Sequence) Warnings() []string {
	return s.warnings
}

// Resolution returns the tick resolution in ticks per quarter note.
func (s *Sequence) Resolution() int {
	return s.tempoMap.Resolution()
}

// TimeAt maps an absolute tick to seconds.
func (s *Sequence) TimeAt(tick int) float64 {
	return s.tempoMap.TimeAt(tick)
}

// Duration returns the time of the last tick covered by the file.
func (s *Sequence) Duration() float64 {
	return s.tempoMap.Duration()
}

// TempoChanges returns parallel arrays of tempo change times in
// seconds and tempos in BPM.
func (s *Sequence) TempoChanges() (times []float64, bpms []float64) {
	return s.tempoMap.TempoChanges()
}

// Beats is a stub: beat locations are not estimated.
func (s *Sequence) Beats() ([]float64, error) {
	return nil, ErrBeatTracking
}

// Onsets returns the start times of every note of every instrument,
// sorted ascending.
func (s *Sequence) Onsets() []float64 {
	var onsets []float64
	for _, inst := range s.Instruments {
		onsets = append(onsets, inst.Onsets()...)
	}
	sort.Float64s(onsets)
	return onsets
}

// Onsets returns the instrument's note start times, sorted ascending.
func (inst *Instrument) Onsets() []float64 {
	onsets := make([]float64, len(inst.Notes))
	for i, n := range inst.Notes {
		onsets[i] = n.Start
	}
	sort.Float64s(onsets)
	return onsets
}

// PianoRoll renders each instrument's piano roll and sums them into a
// combined 128-row matrix sized to the widest instrument; narrower
// rolls contribute only over their own column range. See
// Instrument.PianoRoll for the times grid semantics.
func (s *Sequence) PianoRoll(times []float64) [][]float64 {
	rolls := make([][][]float64, len(s.Instruments))
	maxCols := 0
	for i, inst := range s.Instruments {
		rolls[i] = inst.PianoRoll(times)
		if cols := len(rolls[i][0]); cols > maxCols {
			maxCols = cols
		}
	}

	combined := zeroMatrix(128, maxCols)
	for _, roll := range rolls {
		for r := range roll {
			for c, v := range roll[r] {
				combined[r][c] += v
			}
		}
	}
	return combined
}

// Chroma folds the aggregate piano roll into 12 pitch-class rows.
func (s *Sequence) Chroma(times []float64) [][]float64 {
	return foldChroma(s.PianoRoll(times))
}

// Synthesize renders all non-drum instruments with the given waveform,
// sums them, and normalizes the mix by its peak amplitude so the
// output lies in [-1, 1]. A file with no synthesizable notes (for
// example all drums) comes back as silence.
func (s *Sequence) Synthesize(rate int, wave WaveFunc) []float64 {
	waveforms := make([][]float64, len(s.Instruments))
	maxLen := 0
	for i, inst := range s.Instruments {
		waveforms[i] = inst.Synthesize(rate, wave)
		if len(waveforms[i]) > maxLen {
			maxLen = len(waveforms[i])
		}
	}

	out := make([]float64, maxLen)
	for _, w := range waveforms {
		for i, v := range w {
			out[i] += v
		}
	}

	var peak float64
	for _, v := range out {
		if a := abs(v); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		for i := range out {
			out[i] /= peak
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
