package decode

import (
	"errors"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

// Error taxonomy for the loading stage. All three are recovered locally by
// LoadFiles: the offending file is skipped and the batch continues.
var (
	ErrFileMissing       = errors.New("file does not exist")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrDecodeFailed      = errors.New("decode failed")
)

// Config holds decoder configuration
type Config struct {
	// FFmpegPath and FFprobePath locate the binaries used for formats
	// without a native Go decoder. Defaults assume they are in PATH.
	FFmpegPath  string        `json:"ffmpeg_path"`
	FFprobePath string        `json:"ffprobe_path"`
	Timeout     time.Duration `json:"timeout"`

	// TargetSampleRate resamples ffmpeg-decoded audio to a fixed rate.
	// Zero keeps the source rate. Native decodes always keep the source
	// rate.
	TargetSampleRate int `json:"target_sample_rate"`
}

// DefaultConfig returns default decoder configuration
func DefaultConfig() *Config {
	return &Config{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		Timeout:          30 * time.Second,
		TargetSampleRate: 0,
	}
}

// Decoder turns audio files into mono waveforms. Formats with a native Go
// decoder (wav, flac, mp3, ogg) are decoded in-process; the remaining
// supported formats go through ffmpeg.
type Decoder struct {
	config *Config
	logger logging.Logger
}

// NewDecoder creates a new audio decoder. A nil config uses DefaultConfig.
func NewDecoder(config *Config) *Decoder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "audio_decoder",
		}),
	}
}

// DecodeFile decodes an audio file into a mono waveform. Multi-channel audio
// is downmixed by channel average.
func (d *Decoder) DecodeFile(path string) (spectrogram.Waveform, error) {
	format := FormatOf(path)
	if _, ok := supportedFormatSet[format]; !ok {
		return spectrogram.Waveform{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"path":     path,
		"format":   format,
	})
	logger.Debug("Starting audio file decode")

	var (
		waveform spectrogram.Waveform
		err      error
	)
	if _, native := nativeFormats[format]; native {
		waveform, err = d.decodeNative(path, format)
	} else {
		waveform, err = d.decodeFFmpeg(path)
	}
	if err != nil {
		return spectrogram.Waveform{}, err
	}

	logger.Debug("Audio file decoded", logging.Fields{
		"samples":     len(waveform.Samples),
		"sample_rate": waveform.SampleRate,
		"duration":    waveform.Duration().String(),
	})

	return waveform, nil
}
