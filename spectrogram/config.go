package spectrogram

import "fmt"

// Config holds the analysis parameters shared by the framing, transform and
// mapping stages.
type Config struct {
	// FrameSize is the STFT window length in samples.
	FrameSize int `json:"frame_size"`

	// HopSize is the number of samples the analysis window advances
	// between successive frames. Must not exceed FrameSize.
	HopSize int `json:"hop_size"`

	// Window selects the analysis window applied to each frame.
	Window WindowType `json:"window"`

	// FloorDB clamps decibel values so silence never maps to -Inf.
	FloorDB float64 `json:"floor_db"`

	// AllowSilent permits all-zero waveforms through validation. The
	// resulting spectrogram is flagged as degenerate.
	AllowSilent bool `json:"allow_silent"`

	// Workers bounds the number of goroutines used for batch processing.
	// Zero means one worker per CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the default analysis configuration
func DefaultConfig() *Config {
	return &Config{
		FrameSize:   2048,
		HopSize:     512,
		Window:      WindowHann,
		FloorDB:     -80.0,
		AllowSilent: false,
		Workers:     0,
	}
}

// Validate checks the configuration for values the pipeline cannot work with
func (c *Config) Validate() error {
	if c.FrameSize <= 0 {
		return fmt.Errorf("frame size must be positive: %d", c.FrameSize)
	}
	if c.HopSize <= 0 {
		return fmt.Errorf("hop size must be positive: %d", c.HopSize)
	}
	if c.HopSize > c.FrameSize {
		return fmt.Errorf("hop size (%d) must not exceed frame size (%d)", c.HopSize, c.FrameSize)
	}
	if c.FloorDB >= 0 {
		return fmt.Errorf("decibel floor must be negative: %f", c.FloorDB)
	}
	if c.Workers < 0 {
		return fmt.Errorf("worker count must be non-negative: %d", c.Workers)
	}
	switch c.Window {
	case WindowHann, WindowHamming, WindowBlackman, WindowRectangular:
	default:
		return fmt.Errorf("unsupported window type: %s", c.Window)
	}
	return nil
}
