package decode

import (
	"fmt"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"

	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

// decodeNative decodes wav/flac/mp3/ogg files in-process via beep
func (d *Decoder) decodeNative(path, format string) (spectrogram.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return spectrogram.Waveform{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		info     beep.Format
	)
	switch format {
	case "wav":
		streamer, info, err = wav.Decode(f)
	case "flac":
		streamer, info, err = flac.Decode(f)
	case "mp3":
		streamer, info, err = mp3.Decode(f)
	case "ogg":
		streamer, info, err = vorbis.Decode(f)
	default:
		return spectrogram.Waveform{}, fmt.Errorf("%w: no native decoder for %q", ErrDecodeFailed, format)
	}
	if err != nil {
		return spectrogram.Waveform{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	defer streamer.Close()

	// beep streams stereo pairs; downmix by channel average. Mono sources
	// duplicate the sample into both channels, so the average is exact.
	samples := make([]float64, 0, 1<<16)
	buf := make([][2]float64, 1024)
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, 0.5*(buf[i][0]+buf[i][1]))
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return spectrogram.Waveform{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	return spectrogram.Waveform{
		Samples:    samples,
		SampleRate: int(info.SampleRate),
	}, nil
}
