package spectrogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAxisMode(t *testing.T) {
	tests := []struct {
		input    string
		expected AxisMode
		wantErr  bool
	}{
		{"hz-linear", AxisHzLinear, false},
		{"hz-log", AxisHzLog, false},
		{"note", AxisNote, false},
		{"hz", AxisHzLinear, false},
		{"mel", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		mode, err := ParseAxisMode(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, mode)
	}
}

func TestMapBinsHzLinear(t *testing.T) {
	mapper := NewAxisMapper()

	mapping, err := mapper.MapBins(1025, 22050, 2048, AxisHzLinear)
	require.NoError(t, err)

	assert.Equal(t, AxisHzLinear, mapping.Mode)
	assert.Nil(t, mapping.Notes)
	require.Len(t, mapping.Frequencies, 1025)

	// Bin k maps to k * sampleRate / frameSize
	assert.Equal(t, 0.0, mapping.Frequencies[0])
	for k := range mapping.Frequencies {
		assert.InDelta(t, float64(k)*22050.0/2048.0, mapping.Frequencies[k], 1e-9)
	}

	// Last bin is Nyquist
	assert.InDelta(t, 11025.0, mapping.Frequencies[1024], 1e-9)
}

func TestMapBinsHzLogSameFrequencies(t *testing.T) {
	mapper := NewAxisMapper()

	linear, err := mapper.MapBins(513, 44100, 1024, AxisHzLinear)
	require.NoError(t, err)
	logarithmic, err := mapper.MapBins(513, 44100, 1024, AxisHzLog)
	require.NoError(t, err)

	// Only the display scale differs, never the values
	assert.Equal(t, linear.Frequencies, logarithmic.Frequencies)
	assert.Equal(t, AxisHzLog, logarithmic.Mode)
}

func TestMapBinsNote(t *testing.T) {
	mapper := NewAxisMapper()

	// frameSize 2205 at 22050 Hz puts bin 44 at exactly 440 Hz
	mapping, err := mapper.MapBins(1103, 22050, 2205, AxisNote)
	require.NoError(t, err)
	require.Len(t, mapping.Notes, 1103)

	assert.InDelta(t, 440.0, mapping.Frequencies[44], 1e-9)
	assert.Equal(t, "A4", mapping.Notes[44].Name)
	assert.InDelta(t, 0.0, mapping.Notes[44].Cents, 1e-6)

	// Bin 0 has no defined pitch; log2(0) must never be evaluated
	assert.Equal(t, NoNoteLabel, mapping.Notes[0].Name)
	assert.Equal(t, 0.0, mapping.Notes[0].Cents)

	// Every other bin gets a name and a bounded cents offset
	for k := 1; k < len(mapping.Notes); k++ {
		assert.NotEmpty(t, mapping.Notes[k].Name)
		assert.GreaterOrEqual(t, mapping.Notes[k].Cents, -50.0)
		assert.LessOrEqual(t, mapping.Notes[k].Cents, 50.0)
	}
}

func TestNoteForFrequency(t *testing.T) {
	tests := []struct {
		freq float64
		name string
	}{
		{440.0, "A4"},
		{261.626, "C4"},
		{277.183, "C#4"},
		{880.0, "A5"},
		{27.5, "A0"},
		// Sub-audible bins still get a well-defined label
		{8.176, "C-1"},
	}

	for _, tt := range tests {
		note := noteForFrequency(tt.freq)
		assert.Equal(t, tt.name, note.Name, "freq %.3f", tt.freq)
	}
}

func TestMapBinsPureAndCached(t *testing.T) {
	mapper := NewAxisMapper()

	first, err := mapper.MapBins(1025, 22050, 2048, AxisNote)
	require.NoError(t, err)
	second, err := mapper.MapBins(1025, 22050, 2048, AxisNote)
	require.NoError(t, err)

	// Identical inputs yield identical results; the mapper reuses the
	// cached mapping
	assert.Same(t, first, second)

	// A fresh mapper computes an equal mapping
	other, err := NewAxisMapper().MapBins(1025, 22050, 2048, AxisNote)
	require.NoError(t, err)
	assert.Equal(t, first, other)
}

func TestMapBinsValidation(t *testing.T) {
	mapper := NewAxisMapper()

	_, err := mapper.MapBins(0, 22050, 2048, AxisHzLinear)
	assert.Error(t, err)

	_, err = mapper.MapBins(1025, 0, 2048, AxisHzLinear)
	assert.Error(t, err)

	_, err = mapper.MapBins(1025, 22050, 0, AxisHzLinear)
	assert.Error(t, err)

	_, err = mapper.MapBins(1025, 22050, 2048, AxisMode("mel"))
	assert.Error(t, err)
}
