// Package main is the entry point for the margin CLI.
package main

import (
	"os"

	"github.com/Simplici0/margin/cmd/margin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
