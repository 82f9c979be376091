package spectrogram

import (
	"errors"
	"fmt"
)

// ErrInvalidAudio marks waveforms rejected by validation. Use errors.Is to
// distinguish a rejected sound from a processing failure.
var ErrInvalidAudio = errors.New("invalid audio data")

// ErrDegenerate marks spectrograms computed from all-silent input. The
// transform still produces a matrix (clamped to the floor), but the peak
// reference is an epsilon substitute rather than a real magnitude.
var ErrDegenerate = errors.New("degenerate spectrogram")

// InvalidAudioError describes why a waveform failed validation
type InvalidAudioError struct {
	Reason string
}

func (e *InvalidAudioError) Error() string {
	return fmt.Sprintf("invalid audio data: %s", e.Reason)
}

func (e *InvalidAudioError) Unwrap() error {
	return ErrInvalidAudio
}
