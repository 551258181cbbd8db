package main

import (
	"errors"
	"os"

	"github.com/cnharrison/har-insights/internal/analyzer"
)

// Exit codes
const (
	exitError         = 1
	exitInvalidFormat = 2
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, analyzer.ErrInvalidFormat) {
		return exitInvalidFormat
	}
	return exitError
}
