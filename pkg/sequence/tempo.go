package sequence

// DefaultBPM is assumed until the first Set Tempo event, per the SMF
// convention.
const DefaultBPM = 120.0

// tickScale is one tempo-map breakpoint: from Tick onward, each tick
// lasts SecPerTick seconds. Consecutive breakpoints always carry
// different rates; repeated identical tempo messages are collapsed.
type tickScale struct {
	Tick       int
	SecPerTick float64
}

// TempoMap is a piecewise-linear mapping from ticks to absolute time,
// built once from the tempo track and read-only afterwards. A dense
// per-tick lookup covers every tick up to and including MaxTick.
type TempoMap struct {
	resolution int
	scales     []tickScale
	tickToTime []float64
}

// NewTempoMap builds a tempo map from the Set Tempo events of the
// tempo track (track 0). resolution is in ticks per quarter note.
// maxTick must be at least the largest tick of any event in the file;
// the lookup is materialized for every tick in [0, maxTick].
func NewTempoMap(resolution int, tempoTrack Track, maxTick int) *TempoMap {
	tm := &TempoMap{
		resolution: resolution,
		scales:     []tickScale{{Tick: 0, SecPerTick: 60.0 / (DefaultBPM * float64(resolution))}},
	}

	for _, e := range tempoTrack {
		if e.Type != EventSetTempo {
			continue
		}
		scale := 60.0 / (e.BPM * float64(resolution))
		if e.Tick == 0 {
			// Only one breakpoint is allowed at tick 0; a tempo event
			// there replaces the 120 BPM seed.
			tm.scales = []tickScale{{Tick: 0, SecPerTick: scale}}
			continue
		}
		if scale != tm.scales[len(tm.scales)-1].SecPerTick {
			tm.scales = append(tm.scales, tickScale{Tick: e.Tick, SecPerTick: scale})
		}
	}

	tm.materialize(maxTick)
	return tm
}

// materialize fills the dense tick-to-time lookup by ramping linearly
// through each tempo segment at that segment's constant rate.
func (tm *TempoMap) materialize(maxTick int) {
	tm.tickToTime = make([]float64, maxTick+1)

	var lastEnd float64
	for i := 0; i < len(tm.scales)-1; i++ {
		start, scale := tm.scales[i].Tick, tm.scales[i].SecPerTick
		end := tm.scales[i+1].Tick
		for t := start; t <= end && t <= maxTick; t++ {
			tm.tickToTime[t] = lastEnd + scale*float64(t-start)
		}
		lastEnd += scale * float64(end-start)
	}

	final := tm.scales[len(tm.scales)-1]
	for t := final.Tick; t <= maxTick; t++ {
		tm.tickToTime[t] = lastEnd + final.SecPerTick*float64(t-final.Tick)
	}
}

// TimeAt returns the absolute time in seconds of an integer tick.
// Ticks outside [0, MaxTick] are clamped.
func (tm *TempoMap) TimeAt(tick int) float64 {
	if tick < 0 {
		tick = 0
	}
	if tick >= len(tm.tickToTime) {
		tick = len(tm.tickToTime) - 1
	}
	return tm.tickToTime[tick]
}

// MaxTick returns the last tick covered by the lookup.
func (tm *TempoMap) MaxTick() int {
	return len(tm.tickToTime) - 1
}

// Resolution returns the tick resolution in ticks per quarter note.
func (tm *TempoMap) Resolution() int {
	return tm.resolution
}

// Duration returns the time of the last covered tick.
func (tm *TempoMap) Duration() float64 {
	return tm.tickToTime[len(tm.tickToTime)-1]
}

// TempoChanges returns parallel arrays of the times, in seconds, at
// which the tempo changes and the tempo in BPM from each such time.
func (tm *TempoMap) TempoChanges() (times []float64, bpms []float64) {
	times = make([]float64, len(tm.scales))
	bpms = make([]float64, len(tm.scales))
	for i, s := range tm.scales {
		times[i] = tm.TimeAt(s.Tick)
		bpms[i] = 60.0 / (s.SecPerTick * float64(tm.resolution))
	}
	return times, bpms
}
