package spectrogram

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProcessorValidation(t *testing.T) {
	_, err := NewProcessor(&Config{FrameSize: 0, HopSize: 1, Window: WindowHann, FloorDB: -80})
	assert.Error(t, err)

	_, err = NewProcessor(&Config{FrameSize: 512, HopSize: 1024, Window: WindowHann, FloorDB: -80})
	assert.Error(t, err)

	_, err = NewProcessor(&Config{FrameSize: 512, HopSize: 256, Window: WindowType("kaiser"), FloorDB: -80})
	assert.Error(t, err)

	p, err := NewProcessor(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().FrameSize, p.Config().FrameSize)
}

func TestProcessSound(t *testing.T) {
	processor, err := NewProcessor(nil)
	require.NoError(t, err)

	result, err := processor.ProcessSound(Sound{
		Label:    "test tone",
		Waveform: sineWave(440, 22050, 1.0),
	}, AxisHzLinear)
	require.NoError(t, err)

	assert.Equal(t, "test tone", result.Label)
	assert.Equal(t, 22050, result.SampleRate)
	assert.Equal(t, 1025, result.Matrix.FreqBins)
	assert.Equal(t, 44, result.Matrix.TimeFrames)
	assert.False(t, result.Degenerate())
	assert.InDelta(t, 22050.0/2048.0, result.FreqResolution, 1e-9)
	assert.InDelta(t, 512.0/22050.0, result.TimeResolution, 1e-9)
	require.NotNil(t, result.Axis)
	assert.Len(t, result.Axis.Frequencies, 1025)
}

func TestProcessSoundInvalid(t *testing.T) {
	processor, err := NewProcessor(nil)
	require.NoError(t, err)

	_, err = processor.ProcessSound(Sound{
		Label:    "broken",
		Waveform: Waveform{Samples: []float64{math.NaN()}, SampleRate: 22050},
	}, AxisHzLinear)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAudio))
	assert.Contains(t, err.Error(), "broken")
}

func TestProcessBatchSkipsInvalid(t *testing.T) {
	processor, err := NewProcessor(nil)
	require.NoError(t, err)

	sounds := []Sound{
		{Label: "nan", Waveform: Waveform{Samples: []float64{math.NaN(), 0.5}, SampleRate: 22050}},
		{Label: "good", Waveform: sineWave(440, 22050, 0.5)},
		{Label: "empty", Waveform: Waveform{SampleRate: 22050}},
	}

	results := processor.ProcessBatch(context.Background(), sounds, AxisHzLog)

	// One bad input never aborts the batch
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].Label)
}

func TestProcessBatchPreservesOrder(t *testing.T) {
	processor, err := NewProcessor(&Config{
		FrameSize: 1024,
		HopSize:   256,
		Window:    WindowHann,
		FloorDB:   -80,
		Workers:   4,
	})
	require.NoError(t, err)

	labels := []string{"first", "second", "third", "fourth", "fifth"}
	sounds := make([]Sound, len(labels))
	for i, label := range labels {
		sounds[i] = Sound{
			Label:    label,
			Waveform: sineWave(220+float64(i)*110, 22050, 0.25),
		}
	}

	results := processor.ProcessBatch(context.Background(), sounds, AxisNote)
	require.Len(t, results, len(labels))
	for i, result := range results {
		assert.Equal(t, labels[i], result.Label)
	}
}

func TestProcessBatchAllowSilentDegenerate(t *testing.T) {
	config := DefaultConfig()
	config.AllowSilent = true

	processor, err := NewProcessor(config)
	require.NoError(t, err)

	sounds := []Sound{{
		Label:    "silence",
		Waveform: Waveform{Samples: make([]float64, 22050), SampleRate: 22050},
	}}

	results := processor.ProcessBatch(context.Background(), sounds, AxisHzLinear)
	require.Len(t, results, 1)
	assert.True(t, results[0].Degenerate())
}

func TestProcessBatchCancelled(t *testing.T) {
	processor, err := NewProcessor(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sounds := []Sound{
		{Label: "a", Waveform: sineWave(440, 22050, 0.25)},
		{Label: "b", Waveform: sineWave(550, 22050, 0.25)},
	}

	results := processor.ProcessBatch(ctx, sounds, AxisHzLinear)
	assert.Empty(t, results)
}

func TestProcessBatchEmpty(t *testing.T) {
	processor, err := NewProcessor(nil)
	require.NoError(t, err)

	assert.Nil(t, processor.ProcessBatch(context.Background(), nil, AxisHzLinear))
}
