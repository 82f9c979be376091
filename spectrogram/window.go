package spectrogram

import (
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/sonido-scope/logging"
)

// WindowType represents different analysis window functions
type WindowType string

const (
	WindowHann        WindowType = "hann"
	WindowHamming     WindowType = "hamming"
	WindowBlackman    WindowType = "blackman"
	WindowRectangular WindowType = "rectangular"
)

// windowCoefficients generates symmetric window coefficients for the given
// type and size
func windowCoefficients(windowType WindowType, size int) ([]float64, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive: %d", size)
	}

	coefficients := make([]float64, size)
	denominator := float64(size - 1)
	if size == 1 {
		denominator = 1
	}

	switch windowType {
	case WindowHann:
		for i := 0; i < size; i++ {
			coefficients[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/denominator))
		}

	case WindowHamming:
		for i := 0; i < size; i++ {
			coefficients[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/denominator)
		}

	case WindowBlackman:
		a0, a1, a2 := 0.42, 0.5, 0.08
		for i := 0; i < size; i++ {
			arg := 2 * math.Pi * float64(i) / denominator
			coefficients[i] = a0 - a1*math.Cos(arg) + a2*math.Cos(2*arg)
		}

	case WindowRectangular:
		for i := range coefficients {
			coefficients[i] = 1.0
		}

	default:
		return nil, fmt.Errorf("unsupported window type: %s", windowType)
	}

	return coefficients, nil
}

var (
	windowCacheMu sync.Mutex
	windowCache   = make(map[string][]float64)
)

// cachedWindow returns window coefficients, reusing previously generated ones
// for the same (type, size) pair. Callers must not mutate the returned slice.
func cachedWindow(windowType WindowType, size int) ([]float64, error) {
	key := fmt.Sprintf("%s_%d", windowType, size)

	windowCacheMu.Lock()
	defer windowCacheMu.Unlock()

	if cached, exists := windowCache[key]; exists {
		return cached, nil
	}

	coefficients, err := windowCoefficients(windowType, size)
	if err != nil {
		return nil, err
	}

	windowCache[key] = coefficients
	return coefficients, nil
}

// FrameWindower splits a waveform into overlapping frames and applies an
// analysis window to each one
type FrameWindower struct {
	frameSize int
	hopSize   int
	window    []float64
	logger    logging.Logger
}

// NewFrameWindower creates a windower for the given frame geometry.
// hopSize must be positive and must not exceed frameSize.
func NewFrameWindower(frameSize, hopSize int, windowType WindowType) (*FrameWindower, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive: %d", frameSize)
	}
	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive: %d", hopSize)
	}
	if hopSize > frameSize {
		return nil, fmt.Errorf("hop size (%d) must not exceed frame size (%d)", hopSize, frameSize)
	}

	window, err := cachedWindow(windowType, frameSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate window: %w", err)
	}

	return &FrameWindower{
		frameSize: frameSize,
		hopSize:   hopSize,
		window:    window,
		logger: logging.WithFields(logging.Fields{
			"component":   "frame_windower",
			"frame_size":  frameSize,
			"hop_size":    hopSize,
			"window_type": windowType,
		}),
	}, nil
}

// NumFrames returns the number of frames produced for a signal of the given
// length. The final partial frame is zero-padded rather than dropped, so
// every sample contributes to at least one frame.
func (fw *FrameWindower) NumFrames(numSamples int) int {
	if numSamples <= 0 {
		return 0
	}
	return (numSamples + fw.hopSize - 1) / fw.hopSize
}

// Frames slices the signal into windowed frames in time-ascending order.
// Frames start at multiples of the hop size; the trailing partial frame is
// zero-padded to the full frame length.
func (fw *FrameWindower) Frames(samples []float64) [][]float64 {
	numFrames := fw.NumFrames(len(samples))
	frames := make([][]float64, numFrames)

	for frameIdx := 0; frameIdx < numFrames; frameIdx++ {
		start := frameIdx * fw.hopSize
		end := min(start+fw.frameSize, len(samples))

		frame := make([]float64, fw.frameSize)
		copy(frame, samples[start:end])

		for i := range frame {
			frame[i] *= fw.window[i]
		}

		frames[frameIdx] = frame
	}

	fw.logger.Debug("Signal framed", logging.Fields{
		"samples": len(samples),
		"frames":  numFrames,
	})

	return frames
}

// FrameSize returns the configured frame length in samples
func (fw *FrameWindower) FrameSize() int {
	return fw.frameSize
}

// HopSize returns the configured hop length in samples
func (fw *FrameWindower) HopSize() int {
	return fw.hopSize
}
