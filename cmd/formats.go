package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/sonido-scope/decode"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported audio file formats",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(decode.SupportedFormats(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
