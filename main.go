package main

import (
	"os"

	"github.com/abhisek/lingobuddy/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
