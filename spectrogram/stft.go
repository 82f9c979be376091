package spectrogram

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// epsilonReference substitutes the peak magnitude when every frame is silent,
// so the decibel conversion never divides by zero.
const epsilonReference = 1e-12

// Matrix is a 2-D array of decibel-scaled magnitudes indexed by
// (frequency-bin, time-frame). After peak-relative normalization every value
// lies in [FloorDB, 0].
type Matrix struct {
	Values        [][]float64 `json:"values"` // Frequency x Time decibel matrix
	FreqBins      int         `json:"freq_bins"`
	TimeFrames    int         `json:"time_frames"`
	FloorDB       float64     `json:"floor_db"`
	PeakMagnitude float64     `json:"peak_magnitude"`
	Degenerate    bool        `json:"degenerate"`
}

// Engine computes the STFT of windowed frames and converts magnitudes to a
// peak-relative decibel scale
type Engine struct {
	floorDB float64
	logger  logging.Logger
}

// NewEngine creates a spectrogram engine with the given decibel floor
func NewEngine(floorDB float64) (*Engine, error) {
	if floorDB >= 0 {
		return nil, fmt.Errorf("decibel floor must be negative: %f", floorDB)
	}

	return &Engine{
		floorDB: floorDB,
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_engine",
			"floor_db":  floorDB,
		}),
	}, nil
}

// Compute runs an FFT over every frame, keeps the non-redundant half of the
// bins, and stacks the magnitudes into a decibel matrix normalized to the
// global peak. All frames must share the same length.
func (e *Engine) Compute(frames [][]float64) (*Matrix, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames to transform")
	}

	frameSize := len(frames[0])
	if frameSize == 0 {
		return nil, fmt.Errorf("empty frame")
	}
	for i, frame := range frames {
		if len(frame) != frameSize {
			return nil, fmt.Errorf("frame %d length (%d) doesn't match frame size (%d)", i, len(frame), frameSize)
		}
	}

	numFrames := len(frames)
	freqBins := frameSize/2 + 1

	// Magnitudes are gathered per frame so each worker owns a whole row
	magnitudes := make([][]float64, numFrames)
	for i := range magnitudes {
		magnitudes[i] = make([]float64, freqBins)
	}

	numWorkers := min(runtime.NumCPU(), numFrames)

	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frameIdx := range jobs {
				spectrum := fft.FFTReal(frames[frameIdx])
				for b := 0; b < freqBins; b++ {
					magnitudes[frameIdx][b] = cmplx.Abs(spectrum[b])
				}
			}
		}()
	}

	for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
		jobs <- frameIdx
	}
	close(jobs)
	wg.Wait()

	// Single global reference per sound, not per frame
	peak := 0.0
	for _, row := range magnitudes {
		if rowMax := floats.Max(row); rowMax > peak {
			peak = rowMax
		}
	}

	degenerate := false
	reference := peak
	if reference == 0 {
		degenerate = true
		reference = epsilonReference
		e.logger.Warn("All frames silent, substituting epsilon reference", logging.Fields{
			"frames": numFrames,
			"error":  ErrDegenerate.Error(),
		})
	}

	values := make([][]float64, freqBins)
	for b := 0; b < freqBins; b++ {
		values[b] = make([]float64, numFrames)
		for t := 0; t < numFrames; t++ {
			db := 20 * math.Log10(magnitudes[t][b]/reference)
			if db < e.floorDB || math.IsInf(db, -1) || math.IsNaN(db) {
				db = e.floorDB
			}
			values[b][t] = db
		}
	}

	e.logger.Debug("Spectrogram computed", logging.Fields{
		"time_frames":    numFrames,
		"freq_bins":      freqBins,
		"peak_magnitude": peak,
		"degenerate":     degenerate,
		"workers_used":   numWorkers,
	})

	return &Matrix{
		Values:        values,
		FreqBins:      freqBins,
		TimeFrames:    numFrames,
		FloorDB:       e.floorDB,
		PeakMagnitude: peak,
		Degenerate:    degenerate,
	}, nil
}
