package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "derivekit",
	Short: "derivekit generates boilerplate String, Equal and Hash methods for annotated structs",
	Long:  "derivekit scans Go source files for derive marker annotations and splices the requested boilerplate methods into the original source text",
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
