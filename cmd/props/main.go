package main

import (
	"os"

	"github.com/winterSteve25/props/cmd/props/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
