package main

import (
	"testing"

	"github.com/james-see/midiroll/pkg/sequence"
)

func TestTimesGridExactBoundaries(t *testing.T) {
	// One note over 960 ticks at the default 120 BPM is one second.
	seq, err := sequence.New(480, []sequence.Track{{
		{Type: sequence.EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: sequence.EventNoteOff, Tick: 960, Channel: 0, Pitch: 60},
	}})
	if err != nil {
		t.Fatalf("sequence.New() error: %v", err)
	}

	gridRate = 10
	defer func() { gridRate = 0 }()

	times := timesGrid(seq)
	if len(times) < 11 {
		t.Fatalf("got %d boundaries, want at least 11 for a 1 s file at 10 columns/s", len(times))
	}
	for i, tt := range times {
		if want := float64(i) * 0.1; tt != want {
			t.Errorf("times[%d] = %v, want exactly %v", i, tt, want)
		}
	}
	if last := times[len(times)-1]; last > seq.Duration() {
		t.Errorf("last boundary %v exceeds duration %v", last, seq.Duration())
	}
}

func TestTimesGridNativeWhenUnset(t *testing.T) {
	seq, err := sequence.New(480, nil)
	if err != nil {
		t.Fatalf("sequence.New() error: %v", err)
	}

	gridRate = 0
	if times := timesGrid(seq); times != nil {
		t.Errorf("timesGrid() = %v, want nil for the native resolution", times)
	}
}
