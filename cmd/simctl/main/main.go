package main

import (
	"os"

	"github.com/arthur-debert/simctl/cmd/simctl"
	"github.com/arthur-debert/simctl/pkg/display"
)

func main() {
	rootCmd := simctl.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		display.NewPrinter(os.Stderr, display.FormatAuto).Error(err)
		os.Exit(1)
	}
}
