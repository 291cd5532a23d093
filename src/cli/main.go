package main

import (
	"os"

	"github.com/streamcast/docker-streamcast/src/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
