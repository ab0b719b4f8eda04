package sequence

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func TestNewRejectsBadResolution(t *testing.T) {
	for _, resolution := range []int{0, -1, -480} {
		if _, err := New(resolution, nil); err == nil {
			t.Errorf("New(%d, nil) succeeded, want error", resolution)
		}
	}
}

func TestStrayTempoWarning(t *testing.T) {
	tracks := []Track{
		{
			{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
			{Type: EventNoteOff, Tick: 480, Channel: 0, Pitch: 60},
		},
		{
			{Type: EventSetTempo, Tick: 0, BPM: 240},
		},
	}
	seq := mustNew(t, 480, tracks)

	if len(seq.Warnings()) != 1 {
		t.Fatalf("got %d warnings, want 1", len(seq.Warnings()))
	}
	// The stray tempo is ignored: timing still follows the 120 BPM
	// default from track 0.
	if got := seq.Instruments[0].Notes[0].End; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("note end = %v, want 0.5 (off-track tempo must not apply)", got)
	}
}

func TestNoWarningForTempoOnTrackZero(t *testing.T) {
	tracks := []Track{{
		{Type: EventSetTempo, Tick: 0, BPM: 90},
	}}
	seq := mustNew(t, 480, tracks)

	if len(seq.Warnings()) != 0 {
		t.Errorf("got warnings %v, want none", seq.Warnings())
	}
}

func TestBeatsUnsupported(t *testing.T) {
	seq := mustNew(t, 480, nil)
	if _, err := seq.Beats(); !errors.Is(err, ErrBeatTracking) {
		t.Errorf("Beats() error = %v, want ErrBeatTracking", err)
	}
}

func TestOnsetsSortedAndComplete(t *testing.T) {
	tracks := []Track{{
		{Type: EventNoteOn, Tick: 960, Channel: 0, Pitch: 64, Velocity: 80},
		{Type: EventNoteOff, Tick: 1200, Channel: 0, Pitch: 64},
		{Type: EventNoteOn, Tick: 0, Channel: 9, Pitch: 36, Velocity: 100},
		{Type: EventNoteOff, Tick: 480, Channel: 9, Pitch: 36},
		{Type: EventNoteOn, Tick: 480, Channel: 0, Pitch: 60, Velocity: 80},
		{Type: EventNoteOff, Tick: 960, Channel: 0, Pitch: 60},
	}}
	seq := mustNew(t, 480, tracks)

	onsets := seq.Onsets()
	total := 0
	for _, inst := range seq.Instruments {
		total += len(inst.Notes)
	}
	if len(onsets) != total {
		t.Errorf("got %d onsets, want %d (one per note)", len(onsets), total)
	}
	if !sort.Float64sAreSorted(onsets) {
		t.Errorf("onsets not sorted: %v", onsets)
	}
}

func TestAggregatePianoRollSumsInstruments(t *testing.T) {
	tracks := []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 480, Channel: 0, Pitch: 60},
		{Type: EventProgramChange, Tick: 480, Channel: 1, Program: 24},
		{Type: EventNoteOn, Tick: 480, Channel: 1, Pitch: 60, Velocity: 50},
		{Type: EventNoteOff, Tick: 1440, Channel: 1, Pitch: 60},
		{Type: EventNoteOn, Tick: 0, Channel: 9, Pitch: 36, Velocity: 90},
		{Type: EventNoteOff, Tick: 240, Channel: 9, Pitch: 36},
	}}
	seq := mustNew(t, 480, tracks)

	if len(seq.Instruments) < 2 {
		t.Fatalf("got %d instruments, want at least 2", len(seq.Instruments))
	}

	times := []float64{0, 0.25, 0.5, 0.75, 1.0, 1.25, 1.5}
	combined := seq.PianoRoll(times)

	want := zeroMatrix(128, len(times)-1)
	for _, inst := range seq.Instruments {
		roll := inst.PianoRoll(times)
		for r := range roll {
			for c, v := range roll[r] {
				want[r][c] += v
			}
		}
	}

	for r := range combined {
		for c := range combined[r] {
			if math.Abs(combined[r][c]-want[r][c]) > 1e-9 {
				t.Fatalf("combined[%d][%d] = %v, want %v", r, c, combined[r][c], want[r][c])
			}
		}
	}
}

func TestAggregatePianoRollPadsShorterInstruments(t *testing.T) {
	// Native rendering: instruments of different lengths sum into a
	// matrix as wide as the longest.
	tracks := []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 480, Channel: 0, Pitch: 60},
		{Type: EventProgramChange, Tick: 0, Channel: 1, Program: 24},
		{Type: EventNoteOn, Tick: 0, Channel: 1, Pitch: 72, Velocity: 50},
		{Type: EventNoteOff, Tick: 1920, Channel: 1, Pitch: 72},
	}}
	seq := mustNew(t, 480, tracks)

	combined := seq.PianoRoll(nil)
	if len(combined[0]) != 200 {
		t.Fatalf("got %d columns, want 200 (longest instrument, 2 s)", len(combined[0]))
	}
	if combined[60][10] != 100 || combined[60][60] != 0 {
		t.Errorf("short instrument rows = %v/%v, want 100/0", combined[60][10], combined[60][60])
	}
	if combined[72][150] != 50 {
		t.Errorf("long instrument row = %v, want 50", combined[72][150])
	}
}

func TestSequenceChromaMatchesFold(t *testing.T) {
	tracks := []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 48, Velocity: 30},
		{Type: EventNoteOff, Tick: 960, Channel: 0, Pitch: 48},
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 70},
		{Type: EventNoteOff, Tick: 480, Channel: 0, Pitch: 60},
	}}
	seq := mustNew(t, 480, tracks)

	roll := seq.PianoRoll(nil)
	chroma := seq.Chroma(nil)

	for r := 0; r < 12; r++ {
		for c := range chroma[r] {
			var want float64
			for p := r; p < 128; p += 12 {
				want += roll[p][c]
			}
			if math.Abs(chroma[r][c]-want) > 1e-9 {
				t.Fatalf("chroma[%d][%d] = %v, want %v", r, c, chroma[r][c], want)
			}
		}
	}
}

func TestSequenceDuration(t *testing.T) {
	tracks := []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 960, Channel: 0, Pitch: 60},
	}}
	seq := mustNew(t, 480, tracks)

	// The lookup covers one tick past the last event.
	want := seq.TimeAt(961)
	if got := seq.Duration(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Duration() = %v, want %v", got, want)
	}
	if seq.Duration() < 1.0 {
		t.Errorf("Duration() = %v, want >= 1.0", seq.Duration())
	}
}

func TestInstrumentOrderIsFirstSeen(t *testing.T) {
	tracks := []Track{{
		{Type: EventProgramChange, Tick: 0, Channel: 2, Program: 80},
		{Type: EventNoteOn, Tick: 0, Channel: 2, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 100, Channel: 2, Pitch: 60},
		{Type: EventNoteOn, Tick: 100, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 200, Channel: 0, Pitch: 60},
	}}
	seq := mustNew(t, 480, tracks)

	if len(seq.Instruments) != 2 {
		t.Fatalf("got %d instruments, want 2", len(seq.Instruments))
	}
	if seq.Instruments[0].Program != 80 || seq.Instruments[1].Program != 0 {
		t.Errorf("instrument order = [%d, %d], want [80, 0]",
			seq.Instruments[0].Program, seq.Instruments[1].Program)
	}
}

func TestGMProgramName(t *testing.T) {
	tests := []struct {
		program uint8
		want    string
	}{
		{0, "Acoustic Grand Piano"},
		{40, "Violin"},
		{127, "Gunshot"},
	}
	for _, tt := range tests {
		if got := GMProgramName(tt.program); got != tt.want {
			t.Errorf("GMProgramName(%d) = %q, want %q", tt.program, got, tt.want)
		}
	}
}
