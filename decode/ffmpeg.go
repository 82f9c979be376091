package decode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

// probeInfo holds audio properties detected by ffprobe
type probeInfo struct {
	SampleRate int
	Channels   int
	Codec      string
}

// probeFile inspects the first audio stream of a file with ffprobe
func (d *Decoder) probeFile(path string) (*probeInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	}

	cmd := exec.CommandContext(ctx, d.config.FFprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			CodecName  string `json:"codec_name"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream found")
	}

	stream := probe.Streams[0]
	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %q", stream.SampleRate)
	}

	return &probeInfo{
		SampleRate: sampleRate,
		Channels:   stream.Channels,
		Codec:      stream.CodecName,
	}, nil
}

// decodeFFmpeg decodes a file through an ffmpeg subprocess, producing mono
// raw float64 samples on stdout
func (d *Decoder) decodeFFmpeg(path string) (spectrogram.Waveform, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "decodeFFmpeg",
		"path":     path,
	})

	metadata, err := d.probeFile(path)
	if err != nil {
		logger.Error(err, "Failed to probe audio file")
		return spectrogram.Waveform{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	logger.Debug("Audio metadata detected", logging.Fields{
		"input_sample_rate": metadata.SampleRate,
		"input_channels":    metadata.Channels,
		"input_codec":       metadata.Codec,
	})

	sampleRate := metadata.SampleRate
	args := []string{
		"-loglevel", "error",
		"-i", path,
		"-f", "f64le", // Raw float64 little-endian
		"-acodec", "pcm_f64le",
		"-ac", "1", // Downmix to mono
	}
	if d.config.TargetSampleRate > 0 {
		sampleRate = d.config.TargetSampleRate
		args = append(args, "-ar", strconv.Itoa(sampleRate))
	}
	args = append(args, "pipe:1")

	ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.config.FFmpegPath, args...)
	output, err := cmd.Output()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return spectrogram.Waveform{}, fmt.Errorf("%w: ffmpeg: %v", ErrDecodeFailed, err)
	}

	samples := bytesToFloat64(output)
	if len(samples) == 0 {
		return spectrogram.Waveform{}, fmt.Errorf("%w: ffmpeg produced no samples", ErrDecodeFailed)
	}

	return spectrogram.Waveform{
		Samples:    samples,
		SampleRate: sampleRate,
	}, nil
}

// bytesToFloat64 converts raw little-endian float64 bytes to samples
func bytesToFloat64(data []byte) []float64 {
	samples := make([]float64, 0, len(data)/8)
	for i := 0; i+8 <= len(data); i += 8 {
		bits := binary.LittleEndian.Uint64(data[i : i+8])
		samples = append(samples, math.Float64frombits(bits))
	}
	return samples
}
