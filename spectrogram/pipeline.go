package spectrogram

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-scope/logging"
)

// Sound pairs a display label with the waveform to analyze
type Sound struct {
	Label    string
	Waveform Waveform
}

// Result is the unit handed to a renderer: the decibel matrix plus axis
// metadata for one sound. Results are immutable once produced.
type Result struct {
	Label          string       `json:"label"`
	Matrix         *Matrix      `json:"matrix"`
	Axis           *AxisMapping `json:"axis"`
	SampleRate     int          `json:"sample_rate"`
	FrameSize      int          `json:"frame_size"`
	HopSize        int          `json:"hop_size"`
	FreqResolution float64      `json:"freq_resolution"` // Hz per bin
	TimeResolution float64      `json:"time_resolution"` // seconds per frame
}

// Degenerate reports whether the sound was all-silent at transform time
func (r *Result) Degenerate() bool {
	return r.Matrix != nil && r.Matrix.Degenerate
}

// Processor orchestrates the validate -> frame -> transform -> map pipeline.
// Each sound is processed in isolation; no state is shared across sounds
// beyond the read-only window and axis caches.
type Processor struct {
	config    *Config
	validator *Validator
	windower  *FrameWindower
	engine    *Engine
	mapper    *AxisMapper
	logger    logging.Logger
}

// NewProcessor creates a pipeline processor from the given configuration.
// A nil config uses DefaultConfig.
func NewProcessor(config *Config) (*Processor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	windower, err := NewFrameWindower(config.FrameSize, config.HopSize, config.Window)
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(config.FloorDB)
	if err != nil {
		return nil, err
	}

	return &Processor{
		config:    config,
		validator: NewValidator(config.AllowSilent),
		windower:  windower,
		engine:    engine,
		mapper:    NewAxisMapper(),
		logger: logging.WithFields(logging.Fields{
			"component":  "spectrogram_pipeline",
			"frame_size": config.FrameSize,
			"hop_size":   config.HopSize,
		}),
	}, nil
}

// Config returns the processor's configuration
func (p *Processor) Config() *Config {
	return p.config
}

// ProcessSound runs the full pipeline for a single sound
func (p *Processor) ProcessSound(sound Sound, mode AxisMode) (*Result, error) {
	if err := p.validator.Validate(sound.Waveform); err != nil {
		return nil, fmt.Errorf("sound %q: %w", sound.Label, err)
	}

	frames := p.windower.Frames(sound.Waveform.Samples)

	matrix, err := p.engine.Compute(frames)
	if err != nil {
		return nil, fmt.Errorf("sound %q: %w", sound.Label, err)
	}

	axis, err := p.mapper.MapBins(matrix.FreqBins, sound.Waveform.SampleRate, p.config.FrameSize, mode)
	if err != nil {
		return nil, fmt.Errorf("sound %q: %w", sound.Label, err)
	}

	if matrix.Degenerate {
		p.logger.Warn("Sound is degenerate (all-silent input)", logging.Fields{
			"label": sound.Label,
		})
	}

	return &Result{
		Label:          sound.Label,
		Matrix:         matrix,
		Axis:           axis,
		SampleRate:     sound.Waveform.SampleRate,
		FrameSize:      p.config.FrameSize,
		HopSize:        p.config.HopSize,
		FreqResolution: float64(sound.Waveform.SampleRate) / float64(p.config.FrameSize),
		TimeResolution: float64(p.config.HopSize) / float64(sound.Waveform.SampleRate),
	}, nil
}

// ProcessBatch runs the pipeline for every sound, in parallel across a
// bounded worker pool, and returns the successful results in input order.
// A sound that fails validation or transform is skipped with a diagnostic;
// one bad input never aborts the batch. Cancellation is coarse: sounds not
// yet dispatched when ctx is done are skipped, in-flight sounds run to
// completion.
func (p *Processor) ProcessBatch(ctx context.Context, sounds []Sound, mode AxisMode) []*Result {
	if len(sounds) == 0 {
		return nil
	}

	results := make([]*Result, len(sounds))
	errs := make([]error, len(sounds))

	numWorkers := p.config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(sounds))

	type soundJob struct {
		index int
		sound Sound
	}

	jobs := make(chan soundJob, len(sounds))

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results[job.index], errs[job.index] = p.ProcessSound(job.sound, mode)
			}
		}()
	}

	dispatched := 0
	for i, sound := range sounds {
		if ctx.Err() != nil {
			p.logger.Warn("Batch cancelled, skipping remaining sounds", logging.Fields{
				"remaining": len(sounds) - i,
			})
			break
		}
		jobs <- soundJob{index: i, sound: sound}
		dispatched++
	}
	close(jobs)
	wg.Wait()

	ordered := make([]*Result, 0, dispatched)
	for i := range sounds {
		if errs[i] != nil {
			p.logger.Warn("Skipping sound", logging.Fields{
				"label":  sounds[i].Label,
				"reason": errs[i].Error(),
			})
			continue
		}
		if results[i] != nil {
			ordered = append(ordered, results[i])
		}
	}

	p.logger.Info("Batch processed", logging.Fields{
		"requested": len(sounds),
		"produced":  len(ordered),
		"skipped":   dispatched - len(ordered),
		"mode":      mode,
	})

	return ordered
}
