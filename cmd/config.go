package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := map[string]any{
			"log-level": viper.GetString("log-level"),
			"analysis": map[string]any{
				"frame-size":   viper.GetInt("frame-size"),
				"hop-size":     viper.GetInt("hop-size"),
				"window":       viper.GetString("window"),
				"floor-db":     viper.GetFloat64("floor-db"),
				"allow-silent": viper.GetBool("allow-silent"),
				"workers":      viper.GetInt("workers"),
			},
			"axis": map[string]any{
				"hz-scale": viper.GetString("hz-scale"),
			},
			"decode": map[string]any{
				"ffmpeg":         viper.GetString("ffmpeg"),
				"ffprobe":        viper.GetString("ffprobe"),
				"decode-timeout": viper.GetString("decode-timeout"),
				"sample-rate":    viper.GetInt("sample-rate"),
			},
			"output-dir": viper.GetString("output-dir"),
		}

		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
