package spectrogram

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-scope/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

// sineWave generates a test sine waveform
func sineWave(freq float64, sampleRate int, seconds float64) Waveform {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return Waveform{Samples: samples, SampleRate: sampleRate}
}

func TestValidatorRejects(t *testing.T) {
	tests := []struct {
		name     string
		waveform Waveform
		reason   string
	}{
		{
			name:     "empty samples",
			waveform: Waveform{Samples: nil, SampleRate: 44100},
			reason:   "empty",
		},
		{
			name:     "zero sample rate",
			waveform: Waveform{Samples: []float64{0.1, 0.2}, SampleRate: 0},
			reason:   "sample rate",
		},
		{
			name:     "contains NaN",
			waveform: Waveform{Samples: []float64{0.1, math.NaN(), 0.3}, SampleRate: 44100},
			reason:   "NaN",
		},
		{
			name:     "contains Inf",
			waveform: Waveform{Samples: []float64{0.1, math.Inf(1)}, SampleRate: 44100},
			reason:   "Inf",
		},
		{
			name:     "all zero",
			waveform: Waveform{Samples: make([]float64, 100), SampleRate: 44100},
			reason:   "zero",
		},
		{
			name:     "amplitude out of range",
			waveform: Waveform{Samples: []float64{0.1, 1e9}, SampleRate: 44100},
			reason:   "amplitude",
		},
	}

	validator := NewValidator(false)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.waveform)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAudio), "expected ErrInvalidAudio, got %v", err)
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestValidatorAccepts(t *testing.T) {
	validator := NewValidator(false)

	err := validator.Validate(sineWave(440, 22050, 0.5))
	assert.NoError(t, err)
}

func TestValidatorAllowSilent(t *testing.T) {
	silent := Waveform{Samples: make([]float64, 1024), SampleRate: 22050}

	strict := NewValidator(false)
	require.Error(t, strict.Validate(silent))

	lenient := NewValidator(true)
	assert.NoError(t, lenient.Validate(silent))
}

func TestWaveformDuration(t *testing.T) {
	w := Waveform{Samples: make([]float64, 22050), SampleRate: 22050}
	assert.InDelta(t, 1.0, w.Duration().Seconds(), 1e-9)

	assert.Equal(t, 0.0, Waveform{}.Duration().Seconds())
}
