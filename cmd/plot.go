package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-scope/decode"
	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/RyanBlaney/sonido-scope/render"
	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

var plotCmd = &cobra.Command{
	Use:   "plot <parent-dir> <file>...",
	Short: "Compute and render spectrograms for audio files",
	Long: `Loads audio files relative to a parent directory, computes their
spectrograms, and renders them as PNG images.

Without --mode, an interactive menu offers plotting on the Hz scale, plotting
on the musical-note scale, or exiting. With --mode the chosen axis is rendered
immediately and the program exits.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)

	plotCmd.Flags().Int("frame-size", 2048, "STFT frame size in samples")
	plotCmd.Flags().Int("hop-size", 512, "hop size in samples between frames")
	plotCmd.Flags().String("window", "hann", "analysis window (hann, hamming, blackman, rectangular)")
	plotCmd.Flags().Float64("floor-db", -80.0, "decibel floor for magnitude clamping")
	plotCmd.Flags().Bool("allow-silent", false, "accept all-zero waveforms instead of skipping them")
	plotCmd.Flags().Int("workers", 0, "parallel workers for batch processing (0 = number of CPUs)")
	plotCmd.Flags().String("hz-scale", "log", "Hz axis spacing (linear, log)")
	plotCmd.Flags().String("mode", "", "render non-interactively on this axis (hz, note)")
	plotCmd.Flags().StringP("output-dir", "d", ".", "directory for rendered PNG files")
	plotCmd.Flags().String("ffmpeg", "ffmpeg", "path to the ffmpeg binary")
	plotCmd.Flags().String("ffprobe", "ffprobe", "path to the ffprobe binary")
	plotCmd.Flags().Duration("decode-timeout", 0, "timeout for ffmpeg/ffprobe subprocesses")
	plotCmd.Flags().Int("sample-rate", 0, "resample ffmpeg-decoded audio to this rate (0 keeps source rate)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	parentDir := args[0]
	relPaths := args[1:]

	processor, err := spectrogram.NewProcessor(pipelineConfig())
	if err != nil {
		return err
	}

	decoder := decode.NewDecoder(decodeConfig())
	loaded, skipped := decoder.LoadFiles(parentDir, relPaths)
	if len(loaded) == 0 {
		logging.Warn("No audio files loaded, nothing to plot", logging.Fields{
			"requested": len(relPaths),
			"skipped":   len(skipped),
		})
		return nil
	}

	sounds := make([]spectrogram.Sound, len(loaded))
	for i, l := range loaded {
		sounds[i] = spectrogram.Sound{Label: l.Name, Waveform: l.Waveform}
	}

	outputDir := viper.GetString("output-dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer := render.NewRenderer(nil)

	// An interrupt exits cleanly with status 0, even while blocked on the
	// menu prompt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println()
		logging.Info("Interrupted, exiting")
		os.Exit(0)
	}()

	ctx := context.Background()

	if modeName := viper.GetString("mode"); modeName != "" {
		mode, err := resolveMode(modeName)
		if err != nil {
			return err
		}
		plotAll(ctx, processor, renderer, sounds, mode, outputDir)
		return nil
	}

	return menuLoop(ctx, processor, renderer, sounds, outputDir)
}

// menuChoice enumerates the interactive menu states
type menuChoice string

const (
	choiceHzMode   menuChoice = "1"
	choiceNoteMode menuChoice = "2"
	choiceExit     menuChoice = "3"
)

// menuLoop runs the interactive command loop until the user exits
func menuLoop(ctx context.Context, processor *spectrogram.Processor, renderer *render.Renderer, sounds []spectrogram.Sound, outputDir string) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println()
		fmt.Println("1) Plot spectrograms on Hz scale")
		fmt.Println("2) Plot spectrograms on note scale")
		fmt.Println("3) Exit")
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read menu choice: %w", err)
		}

		switch menuChoice(strings.TrimSpace(line)) {
		case choiceHzMode:
			mode, err := resolveMode("hz")
			if err != nil {
				return err
			}
			plotAll(ctx, processor, renderer, sounds, mode, outputDir)
		case choiceNoteMode:
			plotAll(ctx, processor, renderer, sounds, spectrogram.AxisNote, outputDir)
		case choiceExit:
			return nil
		default:
			fmt.Println("Please choose 1, 2 or 3.")
		}
	}
}

// plotAll processes the batch for one axis mode and writes one PNG per sound
func plotAll(ctx context.Context, processor *spectrogram.Processor, renderer *render.Renderer, sounds []spectrogram.Sound, mode spectrogram.AxisMode, outputDir string) {
	results := processor.ProcessBatch(ctx, sounds, mode)

	for _, result := range results {
		name := fmt.Sprintf("%s_%s.png", sanitizeFilename(result.Label), mode)
		path := filepath.Join(outputDir, name)
		if err := renderer.RenderToFile(result, path); err != nil {
			logging.Error(err, "Failed to render spectrogram", logging.Fields{
				"label": result.Label,
			})
		}
	}
}

// resolveMode maps a CLI mode name to an AxisMode, applying the configured
// Hz axis spacing
func resolveMode(name string) (spectrogram.AxisMode, error) {
	switch name {
	case "hz":
		if viper.GetString("hz-scale") == "linear" {
			return spectrogram.AxisHzLinear, nil
		}
		return spectrogram.AxisHzLog, nil
	case "note":
		return spectrogram.AxisNote, nil
	default:
		return spectrogram.ParseAxisMode(name)
	}
}

// sanitizeFilename replaces characters that are awkward in file names
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-")
	return replacer.Replace(name)
}

// pipelineConfig builds the analysis configuration from viper
func pipelineConfig() *spectrogram.Config {
	return &spectrogram.Config{
		FrameSize:   viper.GetInt("frame-size"),
		HopSize:     viper.GetInt("hop-size"),
		Window:      spectrogram.WindowType(viper.GetString("window")),
		FloorDB:     viper.GetFloat64("floor-db"),
		AllowSilent: viper.GetBool("allow-silent"),
		Workers:     viper.GetInt("workers"),
	}
}

// decodeConfig builds the decoder configuration from viper
func decodeConfig() *decode.Config {
	config := decode.DefaultConfig()
	config.FFmpegPath = viper.GetString("ffmpeg")
	config.FFprobePath = viper.GetString("ffprobe")
	config.TargetSampleRate = viper.GetInt("sample-rate")
	if timeout := viper.GetDuration("decode-timeout"); timeout > 0 {
		config.Timeout = timeout
	}
	return config
}
