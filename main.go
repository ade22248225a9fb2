package main

import (
	"os"

	"github.com/harborworks/slipway/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
