package cmd

import (
	"fmt"
	"os"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "partstrack",
	Short: "Facility parts and purchase-order service CLI",
	Run: func(cmd *cobra.Command, args []string) {
		figure.NewFigure("partstrack", "", true).Print()
		fmt.Println()
		cmd.Help()
	},
}

// Execute runs the CLI: applies registered commands and dispatches.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
