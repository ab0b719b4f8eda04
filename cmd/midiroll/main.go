// Package main is the entry point for the midiroll CLI
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/james-see/midiroll/pkg/api"
	"github.com/james-see/midiroll/pkg/midifile"
	"github.com/james-see/midiroll/pkg/sequence"
	"github.com/james-see/midiroll/pkg/tui"
	"github.com/james-see/midiroll/pkg/wavenc"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	gridRate   float64
	sampleRate int
	waveName   string
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "midiroll",
	Short: "Analyze MIDI files: tempo maps, onsets, piano rolls, synthesis",
	Long: `midiroll converts MIDI files into a time-indexed representation and
derives analysis products from it: per-instrument note lists, piano-roll
and chroma matrices, onset times, and synthesized audio.

Examples:
  midiroll info song.mid
  midiroll tempo song.mid
  midiroll onsets song.mid
  midiroll roll song.mid -o roll.csv
  midiroll chroma song.mid --fs 10 -o chroma.csv
  midiroll synth song.mid -o song.wav --wave square
  midiroll tui
  midiroll serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var infoCmd = &cobra.Command{
	Use:   "info <input.mid>",
	Short: "Print a summary of the file's instruments and timing",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var tempoCmd = &cobra.Command{
	Use:   "tempo <input.mid>",
	Short: "Print the tempo changes with their times",
	Args:  cobra.ExactArgs(1),
	RunE:  runTempo,
}

var onsetsCmd = &cobra.Command{
	Use:   "onsets <input.mid>",
	Short: "Print the sorted onset times of all notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runOnsets,
}

var rollCmd = &cobra.Command{
	Use:   "roll <input.mid>",
	Short: "Export the aggregate piano roll as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoll,
}

var chromaCmd = &cobra.Command{
	Use:   "chroma <input.mid>",
	Short: "Export the aggregate chroma matrix as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runChroma,
}

var synthCmd = &cobra.Command{
	Use:   "synth <input.mid>",
	Short: "Synthesize the file to a WAV",
	Args:  cobra.ExactArgs(1),
	RunE:  runSynth,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  func(cmd *cobra.Command, args []string) error { return tui.Run() },
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Starting API server on port %d...\n", serverPort)
		return api.StartServer(serverPort)
	},
}

func init() {
	rollCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV path (default: stdout)")
	rollCmd.Flags().Float64Var(&gridRate, "fs", 0, "Resample the roll onto a grid of this many columns per second (default: native 100)")

	chromaCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output CSV path (default: stdout)")
	chromaCmd.Flags().Float64Var(&gridRate, "fs", 0, "Resample the chroma onto a grid of this many columns per second (default: native 100)")

	synthCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output WAV path")
	synthCmd.Flags().IntVar(&sampleRate, "rate", 44100, "Sample rate")
	synthCmd.Flags().StringVar(&waveName, "wave", "sine", "Waveform: sine, square or sawtooth")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(tempoCmd)
	rootCmd.AddCommand(onsetsCmd)
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(chromaCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadSequence(path string) (*sequence.Sequence, error) {
	resolution, tracks, err := midifile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	seq, err := sequence.New(resolution, tracks)
	if err != nil {
		return nil, err
	}
	for _, w := range seq.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	return seq, nil
}

// timesGrid builds the column boundaries handed to the piano-roll
// renderer, or nil for the native resolution.
func timesGrid(seq *sequence.Sequence) []float64 {
	if gridRate <= 0 {
		return nil
	}
	step := 1 / gridRate
	var times []float64
	// Boundaries are computed from an integer counter so they stay
	// exact over long files.
	for i := 0; float64(i)*step <= seq.Duration(); i++ {
		times = append(times, float64(i)*step)
	}
	return times
}

func runInfo(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("File:       %s\n", filepath.Base(args[0]))
	fmt.Printf("Resolution: %d ticks/quarter\n", seq.Resolution())
	fmt.Printf("Duration:   %.3f s\n", seq.Duration())
	fmt.Printf("Onsets:     %d\n", len(seq.Onsets()))
	fmt.Printf("Instruments:\n")
	for _, inst := range seq.Instruments {
		fmt.Printf("  [%3d] %-28s %5d notes  %4d bends\n",
			inst.Program, inst.Name(), len(inst.Notes), len(inst.PitchBends))
	}
	return nil
}

func runTempo(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}

	times, bpms := seq.TempoChanges()
	for i := range times {
		fmt.Printf("%10.3f s  %8.2f BPM\n", times[i], bpms[i])
	}
	return nil
}

func runOnsets(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}

	for _, t := range seq.Onsets() {
		fmt.Printf("%.6f\n", t)
	}
	return nil
}

func runRoll(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}
	return writeMatrixCSV(seq.PianoRoll(timesGrid(seq)))
}

func runChroma(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}
	return writeMatrixCSV(seq.Chroma(timesGrid(seq)))
}

// writeMatrixCSV writes one CSV row per matrix row (pitch or pitch
// class) to the output flag target or stdout.
func writeMatrixCSV(matrix [][]float64) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	w := csv.NewWriter(out)
	record := make([]string, 0, 64)
	for _, row := range matrix {
		record = record[:0]
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func runSynth(cmd *cobra.Command, args []string) error {
	seq, err := loadSequence(args[0])
	if err != nil {
		return err
	}

	var wave sequence.WaveFunc
	switch strings.ToLower(waveName) {
	case "sine":
		wave = sequence.SineWave
	case "square":
		wave = sequence.SquareWave
	case "sawtooth", "saw":
		wave = sequence.SawtoothWave
	default:
		return fmt.Errorf("unknown waveform %q", waveName)
	}

	output := outputFile
	if output == "" {
		output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".wav"
	}

	samples := seq.Synthesize(sampleRate, wave)
	if err := wavenc.WriteFile(output, samples, sampleRate); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%d samples at %d Hz)\n", output, len(samples), sampleRate)
	return nil
}
