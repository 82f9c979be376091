package spectrogram

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineSineSpectrogram(t *testing.T) {
	const (
		sampleRate = 22050
		frameSize  = 2048
		hopSize    = 512
		floorDB    = -80.0
	)

	fw, err := NewFrameWindower(frameSize, hopSize, WindowHann)
	require.NoError(t, err)

	engine, err := NewEngine(floorDB)
	require.NoError(t, err)

	frames := fw.Frames(sineWave(440, sampleRate, 1.0).Samples)
	matrix, err := engine.Compute(frames)
	require.NoError(t, err)

	assert.Equal(t, frameSize/2+1, matrix.FreqBins) // 1025
	assert.Equal(t, 44, matrix.TimeFrames)          // ceil(22050 / 512)
	assert.False(t, matrix.Degenerate)
	assert.Greater(t, matrix.PeakMagnitude, 0.0)

	maxDB := math.Inf(-1)
	peakBin := -1
	for b := 0; b < matrix.FreqBins; b++ {
		for tf := 0; tf < matrix.TimeFrames; tf++ {
			v := matrix.Values[b][tf]
			assert.False(t, math.IsInf(v, 0), "value must be finite")
			assert.LessOrEqual(t, v, 0.0)
			assert.GreaterOrEqual(t, v, floorDB)
			if v > maxDB {
				maxDB = v
				peakBin = b
			}
		}
	}

	// Peak-relative normalization puts the global maximum at exactly 0 dB
	assert.InDelta(t, 0.0, maxDB, 1e-9)

	// 440 Hz lands at bin 440 * 2048 / 22050 = 40.87
	expectedBin := int(math.Round(440.0 * frameSize / sampleRate))
	assert.InDelta(t, float64(expectedBin), float64(peakBin), 1.0)
}

func TestEngineDegenerateSilence(t *testing.T) {
	engine, err := NewEngine(-80)
	require.NoError(t, err)

	frames := make([][]float64, 8)
	for i := range frames {
		frames[i] = make([]float64, 256)
	}

	matrix, err := engine.Compute(frames)
	require.NoError(t, err)

	assert.True(t, matrix.Degenerate)
	assert.Equal(t, 0.0, matrix.PeakMagnitude)

	// Every value clamps to the floor; nothing is -Inf
	for b := 0; b < matrix.FreqBins; b++ {
		for tf := 0; tf < matrix.TimeFrames; tf++ {
			assert.Equal(t, -80.0, matrix.Values[b][tf])
		}
	}
}

func TestEngineCustomFloor(t *testing.T) {
	engine, err := NewEngine(-60)
	require.NoError(t, err)

	frames := [][]float64{make([]float64, 128)}
	frames[0][0] = 1.0 // impulse: flat spectrum plus plenty of dynamic range

	matrix, err := engine.Compute(frames)
	require.NoError(t, err)

	for b := 0; b < matrix.FreqBins; b++ {
		assert.GreaterOrEqual(t, matrix.Values[b][0], -60.0)
	}
}

func TestEngineErrors(t *testing.T) {
	_, err := NewEngine(0)
	assert.Error(t, err, "floor must be negative")

	engine, err := NewEngine(-80)
	require.NoError(t, err)

	_, err = engine.Compute(nil)
	assert.Error(t, err)

	_, err = engine.Compute([][]float64{{}})
	assert.Error(t, err)

	_, err = engine.Compute([][]float64{make([]float64, 128), make([]float64, 64)})
	assert.Error(t, err)
}
