package spectrogram

import (
	"math"
	"time"

	"github.com/RyanBlaney/sonido-scope/logging"
	"gonum.org/v1/gonum/floats"
)

// peakLimit bounds the absolute sample value a decoded waveform may carry.
// Decoded PCM is nominally within [-1, 1]; anything orders of magnitude above
// that indicates a broken decode rather than a loud recording.
const peakLimit = 1e3

// Waveform holds a decoded mono signal and its sample rate. A Waveform is
// owned by the pipeline invocation that decoded it and is never mutated.
type Waveform struct {
	Samples    []float64 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the length of the waveform in time
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	seconds := float64(len(w.Samples)) / float64(w.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}

// Validator checks decoded sample buffers for numeric validity before any
// transform runs
type Validator struct {
	allowSilent bool
	logger      logging.Logger
}

// NewValidator creates a new sample validator. When allowSilent is true,
// all-zero waveforms pass validation and are flagged as degenerate later in
// the pipeline.
func NewValidator(allowSilent bool) *Validator {
	return &Validator{
		allowSilent: allowSilent,
		logger: logging.WithFields(logging.Fields{
			"component": "sample_validator",
		}),
	}
}

// Validate checks a waveform and returns an *InvalidAudioError describing the
// first rule it breaks. A nil return means the waveform is safe to transform.
func (v *Validator) Validate(w Waveform) error {
	if w.SampleRate <= 0 {
		return &InvalidAudioError{Reason: "sample rate must be positive"}
	}

	if len(w.Samples) == 0 {
		return &InvalidAudioError{Reason: "empty sample buffer"}
	}

	if floats.HasNaN(w.Samples) {
		return &InvalidAudioError{Reason: "sample buffer contains NaN"}
	}

	allZero := true
	peak := 0.0
	for _, s := range w.Samples {
		if math.IsInf(s, 0) {
			return &InvalidAudioError{Reason: "sample buffer contains Inf"}
		}
		if s != 0 {
			allZero = false
		}
		if abs := math.Abs(s); abs > peak {
			peak = abs
		}
	}

	if peak > peakLimit {
		return &InvalidAudioError{Reason: "sample amplitude out of range"}
	}

	if allZero && !v.allowSilent {
		return &InvalidAudioError{Reason: "all samples are zero"}
	}

	v.logger.Debug("Waveform accepted", logging.Fields{
		"samples":     len(w.Samples),
		"sample_rate": w.SampleRate,
		"peak":        peak,
		"duration":    w.Duration().String(),
	})

	return nil
}
