package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/sonido-scope/logging"
)

var (
	configFile string
	verbose    bool
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sonido-scope",
	Short: "Audio spectrogram computation and viewer",
	Long: `Computes time-frequency representations (spectrograms) of audio files
and renders them as color-mapped images.

Key features:
- STFT analysis with configurable frame size, hop size and window function
- Peak-relative decibel scaling with a configurable floor
- Linear or logarithmic Hz frequency axis
- Musical-note frequency axis with cents offsets
- Batch processing that skips bad inputs instead of aborting`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd, viper.GetViper()); err != nil {
			return err
		}

		level := logging.ParseLevel(viper.GetString("log-level"))
		if viper.GetBool("verbose") {
			level = logging.DebugLevel
		}
		logging.SetLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/sonido-scope/sonido-scope.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "sonido-scope"))
		viper.AddConfigPath(".")
		viper.SetConfigName("sonido-scope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SONIDO_SCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// setDefaults registers defaults for every configuration key so subcommands
// can rely on viper even when their flags are not set
func setDefaults() {
	// Analysis
	viper.SetDefault("frame-size", 2048)
	viper.SetDefault("hop-size", 512)
	viper.SetDefault("window", "hann")
	viper.SetDefault("floor-db", -80.0)
	viper.SetDefault("allow-silent", false)
	viper.SetDefault("workers", 0)

	// Axis / output
	viper.SetDefault("hz-scale", "log")
	viper.SetDefault("mode", "")
	viper.SetDefault("output-dir", ".")

	// Decoding
	viper.SetDefault("ffmpeg", "ffmpeg")
	viper.SetDefault("ffprobe", "ffprobe")
	viper.SetDefault("decode-timeout", "30s")
	viper.SetDefault("sample-rate", 0)
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))

		// Apply the viper config value to the flag when the flag is not
		// set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}

		if err := v.BindEnv(f.Name, "SONIDO_SCOPE_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}
