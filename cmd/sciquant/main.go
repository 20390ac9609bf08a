package main

import (
	"os"

	"github.com/rmorand/sciquant/cmd/sciquant/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
