package main

import (
	"os"

	"github.com/secpipe/secpipe/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
