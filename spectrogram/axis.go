package spectrogram

import (
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/sonido-scope/logging"
)

// AxisMode selects how FFT bin indices map to a displayable frequency axis
type AxisMode string

const (
	// AxisHzLinear draws bin frequencies in Hz with linear spacing
	AxisHzLinear AxisMode = "hz-linear"
	// AxisHzLog draws the same Hz values with logarithmic spacing. Only
	// the display scale differs; bin values are not transformed.
	AxisHzLog AxisMode = "hz-log"
	// AxisNote labels each bin with its nearest equal-temperament note
	AxisNote AxisMode = "note"
)

// ParseAxisMode converts a mode name to an AxisMode
func ParseAxisMode(name string) (AxisMode, error) {
	switch AxisMode(name) {
	case AxisHzLinear, AxisHzLog, AxisNote:
		return AxisMode(name), nil
	case "hz":
		return AxisHzLinear, nil
	default:
		return "", fmt.Errorf("unknown axis mode: %q", name)
	}
}

// NoNoteLabel is the sentinel note name assigned to the 0 Hz bin, which has
// no defined pitch.
const NoNoteLabel = "—"

// pitchClassNames is the fixed 12-tone equal-temperament table
var pitchClassNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteLabel carries the nearest note name for a bin and the signed cents
// offset from that note, clamped to [-50, 50].
type NoteLabel struct {
	Name  string  `json:"name"`
	Cents float64 `json:"cents"`
}

// AxisMapping describes the frequency axis for a spectrogram. It is derived
// purely from (numBins, sampleRate, frameSize, mode) and carries no signal
// content.
type AxisMapping struct {
	Mode        AxisMode    `json:"mode"`
	Frequencies []float64   `json:"frequencies"` // Hz value per bin
	Notes       []NoteLabel `json:"notes,omitempty"`
	SampleRate  int         `json:"sample_rate"`
	FrameSize   int         `json:"frame_size"`
}

// AxisMapper converts FFT bin indices into axis metadata. Mappings are cached
// per (numBins, sampleRate, frameSize, mode) since they are pure functions of
// their inputs.
type AxisMapper struct {
	mu     sync.Mutex
	cache  map[string]*AxisMapping
	logger logging.Logger
}

// NewAxisMapper creates a new frequency axis mapper
func NewAxisMapper() *AxisMapper {
	return &AxisMapper{
		cache: make(map[string]*AxisMapping),
		logger: logging.WithFields(logging.Fields{
			"component": "axis_mapper",
		}),
	}
}

// MapBins maps numBins FFT bins to axis metadata for the given mode.
// Bin k corresponds to k * sampleRate / frameSize Hz. Callers must not mutate
// the returned mapping.
func (m *AxisMapper) MapBins(numBins, sampleRate, frameSize int, mode AxisMode) (*AxisMapping, error) {
	if numBins <= 0 {
		return nil, fmt.Errorf("bin count must be positive: %d", numBins)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive: %d", frameSize)
	}

	switch mode {
	case AxisHzLinear, AxisHzLog, AxisNote:
	default:
		return nil, fmt.Errorf("unknown axis mode: %q", mode)
	}

	key := fmt.Sprintf("%d_%d_%d_%s", numBins, sampleRate, frameSize, mode)

	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, exists := m.cache[key]; exists {
		return cached, nil
	}

	frequencies := make([]float64, numBins)
	for k := 0; k < numBins; k++ {
		frequencies[k] = float64(k) * float64(sampleRate) / float64(frameSize)
	}

	mapping := &AxisMapping{
		Mode:        mode,
		Frequencies: frequencies,
		SampleRate:  sampleRate,
		FrameSize:   frameSize,
	}

	if mode == AxisNote {
		notes := make([]NoteLabel, numBins)
		notes[0] = NoteLabel{Name: NoNoteLabel}
		for k := 1; k < numBins; k++ {
			notes[k] = noteForFrequency(frequencies[k])
		}
		mapping.Notes = notes
	}

	m.cache[key] = mapping

	m.logger.Debug("Axis mapping computed", logging.Fields{
		"mode":        mode,
		"bins":        numBins,
		"sample_rate": sampleRate,
		"frame_size":  frameSize,
	})

	return mapping, nil
}

// noteForFrequency converts a frequency in Hz to its nearest
// equal-temperament note, using A4 = 440 Hz as the reference.
func noteForFrequency(freq float64) NoteLabel {
	rawNote := 69 + 12*math.Log2(freq/440.0)
	rounded := math.Round(rawNote)

	cents := 100 * (rawNote - rounded)
	cents = math.Max(-50, math.Min(50, cents))

	n := int(rounded)
	pitchClass := ((n % 12) + 12) % 12
	octave := int(math.Floor(float64(n)/12.0)) - 1

	return NoteLabel{
		Name:  fmt.Sprintf("%s%d", pitchClassNames[pitchClass], octave),
		Cents: cents,
	}
}
