package sequence

import "math"

// WaveFunc generates one sample of a periodic waveform with period 2π,
// given a phase in radians.
type WaveFunc func(phase float64) float64

// Waveform presets for Synthesize.
func SineWave(phase float64) float64 { return math.Sin(phase) }

func SquareWave(phase float64) float64 {
	if math.Sin(phase) >= 0 {
		return 1
	}
	return -1
}

func SawtoothWave(phase float64) float64 {
	t := phase / (2 * math.Pi)
	return 2 * (t - math.Floor(t+0.5))
}

// fadeOutSec is the length of the linear fade applied to note tails to
// avoid discontinuity clicks.
const fadeOutSec = 0.1

// Synthesize renders the instrument's notes at the given sample rate
// using the supplied periodic waveform. Each note plays at its equal-
// tempered frequency with an exponential decay envelope (1 s time
// constant) scaled by velocity, and its last 0.1 s fade linearly to
// zero (shorter notes fade over their whole length). The buffer runs
// one second past the last note's end. Drum instruments render as
// silence of the same length. The output is not normalized.
func (inst *Instrument) Synthesize(rate int, wave WaveFunc) []float64 {
	out := make([]float64, int(float64(rate)*(inst.EndTime()+1)))
	if inst.IsDrum {
		return out
	}

	fadeSamples := int(fadeOutSec * float64(rate))
	for _, n := range inst.Notes {
		start := int(float64(rate) * n.Start)
		end := int(float64(rate) * n.End)
		length := end - start

		frequency := NoteFrequency(n.Pitch)
		for i := 0; i < length; i++ {
			envelope := math.Exp(-float64(i) / float64(rate))
			if length > fadeSamples {
				if j := i - (length - fadeSamples); j >= 0 {
					envelope *= fadeScale(j, fadeSamples)
				}
			} else {
				envelope *= fadeScale(i, length)
			}
			envelope *= float64(n.Velocity)

			phase := 2 * math.Pi * frequency * float64(i) / float64(rate)
			out[start+i] += envelope * wave(phase)
		}
	}
	return out
}

// fadeScale is the i-th of n evenly spaced values from 1 down to 0.
func fadeScale(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 - float64(i)/float64(n-1)
}

// NoteFrequency returns the equal-tempered frequency in Hz of a MIDI
// pitch, with A4 (pitch 69) at 440 Hz.
func NoteFrequency(pitch uint8) float64 {
	return 440 * math.Pow(2, (float64(pitch)-69)/12)
}
