package sequence

import "math"

// rollRate is the native piano-roll resolution in columns per second.
const rollRate = 100

// bendThreshold is the smallest bend the 14-bit pitch wheel can
// express; anything below it is treated as no bend.
const bendThreshold = 1.0 / 8192.0

// PianoRoll renders the instrument's notes as a 128-row matrix of
// velocity intensities, one row per MIDI pitch, sampled at 100 columns
// per second. Overlapping notes on the same pitch accumulate. Pitch
// bends shift and blend rows over the bent time span.
//
// If times is non-nil it gives the column boundaries of an output grid
// onto which the native matrix is box-resampled; the result then has
// len(times)-1 columns. Drum instruments carry no pitch information
// and render as zeros of the matching shape.
func (inst *Instrument) PianoRoll(times []float64) [][]float64 {
	if len(inst.Notes) == 0 {
		return zeroMatrix(128, 0)
	}
	// A grid needs at least two boundaries to define a column.
	if times != nil && len(times) < 2 {
		return zeroMatrix(128, 0)
	}

	endTime := inst.EndTime()
	nCols := int(math.Ceil(endTime * rollRate))

	if inst.IsDrum {
		if times == nil {
			return zeroMatrix(128, nCols)
		}
		return zeroMatrix(128, len(times)-1)
	}

	roll := zeroMatrix(128, nCols)
	for _, n := range inst.Notes {
		start := int(n.Start * rollRate)
		end := int(n.End * rollRate)
		for c := start; c < end && c < nCols; c++ {
			roll[n.Pitch][c] += float64(n.Velocity)
		}
	}

	inst.applyPitchBends(roll, endTime)

	if times == nil {
		return roll
	}
	return resample(roll, times)
}

// applyPitchBends rewrites the bent column spans of roll in place. Each
// bend holds until the next one; a synthetic zero bend at the end time
// terminates the final segment.
func (inst *Instrument) applyPitchBends(roll [][]float64, endTime float64) {
	nCols := len(roll[0])
	for i, pb := range inst.PitchBends {
		segEnd := endTime
		if i+1 < len(inst.PitchBends) {
			segEnd = inst.PitchBends[i+1].Time
		}

		if math.Abs(pb.Semitones) < bendThreshold {
			continue
		}

		start := int(pb.Time * rollRate)
		end := int(segEnd * rollRate)
		if end > nCols {
			end = nCols
		}
		if start < 0 {
			start = 0
		}
		if end <= start {
			continue
		}
		width := end - start

		// Split into whole semitone rows and a fractional remainder.
		bendInt := int(math.Floor(math.Abs(pb.Semitones)))
		if pb.Semitones < 0 {
			bendInt = -bendInt
		}
		frac := math.Abs(pb.Semitones - float64(bendInt))

		// Shift rows by the integer part; rows pushed past the pitch
		// range are dropped.
		bent := zeroMatrix(128, width)
		if pb.Semitones >= 0 {
			for r := bendInt; r < 128; r++ {
				copy(bent[r], roll[r-bendInt][start:end])
			}
			// Blend each row toward its lower neighbor by the
			// fractional part. Walk top-down so the neighbor value
			// read is still unblended.
			for r := 127; r >= 1; r-- {
				for c := 0; c < width; c++ {
					bent[r][c] = (1-frac)*bent[r][c] + frac*bent[r-1][c]
				}
			}
		} else {
			for r := 0; r < 128+bendInt; r++ {
				copy(bent[r], roll[r-bendInt][start:end])
			}
			for r := 0; r < 127; r++ {
				for c := 0; c < width; c++ {
					bent[r][c] = (1-frac)*bent[r][c] + frac*bent[r+1][c]
				}
			}
		}

		for r := 0; r < 128; r++ {
			copy(roll[r][start:end], bent[r])
		}
	}
}

// resample box-resamples the native matrix onto the supplied column
// boundaries: each output column is the mean of the native columns
// falling inside its interval, or zero when none do.
func resample(roll [][]float64, times []float64) [][]float64 {
	if len(times) < 2 {
		return zeroMatrix(len(roll), 0)
	}
	nCols := len(roll[0])
	out := zeroMatrix(len(roll), len(times)-1)
	for n := 0; n+1 < len(times); n++ {
		start := int(times[n] * rollRate)
		end := int(times[n+1] * rollRate)
		if start < 0 {
			start = 0
		}
		if end > nCols {
			end = nCols
		}
		if end <= start {
			continue
		}
		for r := range roll {
			var sum float64
			for c := start; c < end; c++ {
				sum += roll[r][c]
			}
			out[r][n] = sum / float64(end-start)
		}
	}
	return out
}

// Chroma folds the instrument's piano roll into 12 pitch-class rows by
// summing all rows congruent mod 12.
func (inst *Instrument) Chroma(times []float64) [][]float64 {
	return foldChroma(inst.PianoRoll(times))
}

func foldChroma(roll [][]float64) [][]float64 {
	chroma := zeroMatrix(12, len(roll[0]))
	for r := range roll {
		for c, v := range roll[r] {
			chroma[r%12][c] += v
		}
	}
	return chroma
}

func zeroMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
