// Package api provides the REST API server for midiroll
package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/james-see/midiroll/pkg/midifile"
	"github.com/james-see/midiroll/pkg/sequence"
	"github.com/james-see/midiroll/pkg/wavenc"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title MIDIRoll API
// @version 1.0
// @description API for MIDI analysis: tempo maps, onsets, piano rolls, synthesis
// @host localhost:8080
// @BasePath /api/v1

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/analyze", handleAnalyze)
		v1.POST("/onsets", handleOnsets)
		v1.POST("/synthesize", handleSynthesize)
		v1.GET("/waveforms", listWaveforms)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r.Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "midiroll",
	})
}

// listWaveforms godoc
// @Summary List synthesis waveforms
// @Description Returns the waveform names accepted by the synthesize endpoint
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/waveforms [get]
func listWaveforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"waveforms": []string{"sine", "square", "sawtooth"},
	})
}

// instrumentSummary is the per-instrument portion of an analysis response.
type instrumentSummary struct {
	Program   uint8   `json:"program"`
	Name      string  `json:"name"`
	IsDrum    bool    `json:"is_drum"`
	NoteCount int     `json:"note_count"`
	BendCount int     `json:"bend_count"`
	EndTime   float64 `json:"end_time"`
}

// handleAnalyze godoc
// @Summary Analyze a MIDI file
// @Description Upload a MIDI file and receive its tempo map, duration, warnings and instrument summaries
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to analyze"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /api/v1/analyze [post]
func handleAnalyze(c *gin.Context) {
	seq, ok := loadUpload(c)
	if !ok {
		return
	}

	times, bpms := seq.TempoChanges()
	instruments := make([]instrumentSummary, len(seq.Instruments))
	for i, inst := range seq.Instruments {
		instruments[i] = instrumentSummary{
			Program:   inst.Program,
			Name:      inst.Name(),
			IsDrum:    inst.IsDrum,
			NoteCount: len(inst.Notes),
			BendCount: len(inst.PitchBends),
			EndTime:   inst.EndTime(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"resolution":  seq.Resolution(),
		"duration":    seq.Duration(),
		"tempo_times": times,
		"tempo_bpms":  bpms,
		"warnings":    seq.Warnings(),
		"instruments": instruments,
	})
}

// handleOnsets godoc
// @Summary List note onsets
// @Description Upload a MIDI file and receive the sorted onset times of all notes
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to analyze"
// @Success 200 {object} map[string][]float64
// @Failure 400 {object} map[string]string
// @Router /api/v1/onsets [post]
func handleOnsets(c *gin.Context) {
	seq, ok := loadUpload(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"onsets": seq.Onsets()})
}

// handleSynthesize godoc
// @Summary Synthesize a MIDI file to WAV
// @Description Upload a MIDI file and receive a rendered WAV file
// @Tags synthesize
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to synthesize"
// @Param rate query int false "Sample rate (default: 44100)"
// @Param wave query string false "Waveform: sine, square or sawtooth (default: sine)"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /api/v1/synthesize [post]
func handleSynthesize(c *gin.Context) {
	seq, ok := loadUpload(c)
	if !ok {
		return
	}

	rate, err := strconv.Atoi(c.DefaultQuery("rate", "44100"))
	if err != nil || rate <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sample rate"})
		return
	}

	wave, ok := waveByName(c.DefaultQuery("wave", "sine"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown waveform"})
		return
	}

	samples := seq.Synthesize(rate, wave)

	var buf bytes.Buffer
	if err := wavenc.Encode(&buf, samples, rate); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=synthesized.wav")
	c.Data(http.StatusOK, "audio/wav", buf.Bytes())
}

// loadUpload reads the uploaded MIDI file and builds a sequence from
// it, writing the error response itself on failure.
func loadUpload(c *gin.Context) (*sequence.Sequence, bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, false
	}

	resolution, tracks, err := midifile.Load(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	seq, err := sequence.New(resolution, tracks)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return seq, true
}

func waveByName(name string) (sequence.WaveFunc, bool) {
	switch name {
	case "sine":
		return sequence.SineWave, true
	case "square":
		return sequence.SquareWave, true
	case "sawtooth", "saw":
		return sequence.SawtoothWave, true
	default:
		return nil, false
	}
}
