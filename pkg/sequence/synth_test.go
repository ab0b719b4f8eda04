package sequence

import (
	"math"
	"testing"
)

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		pitch uint8
		want  float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6255653005986},
	}
	for _, tt := range tests {
		if got := NoteFrequency(tt.pitch); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NoteFrequency(%d) = %v, want %v", tt.pitch, got, tt.want)
		}
	}
}

func TestInstrumentSynthesizeLength(t *testing.T) {
	// Buffer runs one second past the last note end.
	inst := &Instrument{
		Notes: []Note{{Pitch: 69, Velocity: 100, Start: 0, End: 0.5}},
	}
	out := inst.Synthesize(1000, SineWave)

	if len(out) != 1500 {
		t.Errorf("got %d samples, want 1500", len(out))
	}
}

func TestInstrumentSynthesizeDrumSilence(t *testing.T) {
	inst := &Instrument{
		IsDrum: true,
		Notes:  []Note{{Pitch: 36, Velocity: 127, Start: 0, End: 1}},
	}
	out := inst.Synthesize(1000, SineWave)

	if len(out) != 2000 {
		t.Fatalf("got %d samples, want 2000", len(out))
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want 0 (drums are silent)", i, v)
		}
	}
}

func TestInstrumentSynthesizeNonSilent(t *testing.T) {
	inst := &Instrument{
		Notes: []Note{{Pitch: 69, Velocity: 100, Start: 0, End: 0.5}},
	}
	out := inst.Synthesize(8000, SineWave)

	var peak float64
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		t.Fatal("synthesized note is silent")
	}
	// The tail past the note must be silence.
	for i := 4000; i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %v, want 0 past the note end", i, out[i])
		}
	}
}

func TestInstrumentSynthesizeFadesToZero(t *testing.T) {
	inst := &Instrument{
		Notes: []Note{{Pitch: 69, Velocity: 100, Start: 0, End: 1}},
	}
	out := inst.Synthesize(8000, SineWave)

	// The very last sample of the note carries a zero fade factor.
	if out[7999] != 0 {
		t.Errorf("final note sample = %v, want 0 after fade-out", out[7999])
	}
}

func TestSequenceSynthesizePeakIsOne(t *testing.T) {
	seq := mustNew(t, 480, []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 0, Pitch: 60, Velocity: 100},
		{Type: EventNoteOff, Tick: 480, Channel: 0, Pitch: 60},
		{Type: EventNoteOn, Tick: 0, Channel: 1, Pitch: 67, Velocity: 50},
		{Type: EventNoteOff, Tick: 240, Channel: 1, Pitch: 67},
	}})
	out := seq.Synthesize(8000, SineWave)

	var peak float64
	for _, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if peak != 1.0 {
		t.Errorf("peak = %v, want exactly 1.0 after normalization", peak)
	}
}

func TestSequenceSynthesizeAllDrums(t *testing.T) {
	seq := mustNew(t, 480, []Track{{
		{Type: EventNoteOn, Tick: 0, Channel: 9, Pitch: 36, Velocity: 127},
		{Type: EventNoteOff, Tick: 480, Channel: 9, Pitch: 36},
	}})
	out := seq.Synthesize(8000, SineWave)

	if len(out) == 0 {
		t.Fatal("all-drum synthesis returned no buffer")
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %v, want silence", i, v)
		}
		if math.IsNaN(v) {
			t.Fatalf("out[%d] is NaN (normalized by zero peak)", i)
		}
	}
}

func TestSequenceSynthesizeEmpty(t *testing.T) {
	seq := mustNew(t, 480, nil)
	if out := seq.Synthesize(8000, SineWave); len(out) != 0 {
		t.Errorf("got %d samples from an empty sequence, want 0", len(out))
	}
}

func TestWaveformShapes(t *testing.T) {
	if got := SquareWave(math.Pi / 2); got != 1 {
		t.Errorf("SquareWave(π/2) = %v, want 1", got)
	}
	if got := SquareWave(3 * math.Pi / 2); got != -1 {
		t.Errorf("SquareWave(3π/2) = %v, want -1", got)
	}
	if got := SawtoothWave(0); got != 0 {
		t.Errorf("SawtoothWave(0) = %v, want 0", got)
	}
	if got := SawtoothWave(math.Pi / 2); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("SawtoothWave(π/2) = %v, want 0.5", got)
	}
	for _, phase := range []float64{0, 0.1, 1, 2, 5, 10} {
		for name, wave := range map[string]WaveFunc{"sine": SineWave, "square": SquareWave, "sawtooth": SawtoothWave} {
			if v := wave(phase); v < -1 || v > 1 {
				t.Errorf("%s(%v) = %v, outside [-1, 1]", name, phase, v)
			}
		}
	}
}
