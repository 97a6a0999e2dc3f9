package main

import (
	"os"

	"github.com/rustyeddy/fxscan/cmd/fxscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
