package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

// LoadedSound is one successfully decoded file
type LoadedSound struct {
	Name     string // file name without extension, used as display label
	Path     string
	Waveform spectrogram.Waveform
}

// SkippedFile records a file the loader could not use and why
type SkippedFile struct {
	Path string
	Err  error
}

// LoadFiles loads audio files relative to a parent directory. Missing files,
// unrecognized extensions and decode failures are skipped with a diagnostic;
// a single bad file never aborts the batch. Loaded sounds keep the order of
// the input paths.
func (d *Decoder) LoadFiles(dir string, relPaths []string) ([]LoadedSound, []SkippedFile) {
	logger := d.logger.WithFields(logging.Fields{
		"function":  "LoadFiles",
		"directory": dir,
	})

	var (
		loaded  []LoadedSound
		skipped []SkippedFile
	)

	for _, relPath := range relPaths {
		fullPath := filepath.Join(dir, relPath)

		if _, err := os.Stat(fullPath); os.IsNotExist(err) {
			err := fmt.Errorf("%w: %s", ErrFileMissing, fullPath)
			logger.Warn("File does not exist, skipping", logging.Fields{
				"path": fullPath,
			})
			skipped = append(skipped, SkippedFile{Path: fullPath, Err: err})
			continue
		}

		if !IsSupported(fullPath) {
			err := fmt.Errorf("%w: %q", ErrUnsupportedFormat, FormatOf(fullPath))
			logger.Warn("Unsupported file format, skipping", logging.Fields{
				"path":   fullPath,
				"format": FormatOf(fullPath),
			})
			skipped = append(skipped, SkippedFile{Path: fullPath, Err: err})
			continue
		}

		waveform, err := d.DecodeFile(fullPath)
		if err != nil {
			logger.Error(err, "Failed to decode file, skipping", logging.Fields{
				"path": fullPath,
			})
			skipped = append(skipped, SkippedFile{Path: fullPath, Err: err})
			continue
		}

		name := strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath))
		loaded = append(loaded, LoadedSound{
			Name:     name,
			Path:     fullPath,
			Waveform: waveform,
		})
	}

	logger.Info("Audio files loaded", logging.Fields{
		"requested": len(relPaths),
		"loaded":    len(loaded),
		"skipped":   len(skipped),
	})

	return loaded, skipped
}
