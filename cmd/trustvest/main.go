package main

import (
	"os"

	"github.com/trustvest/trustvest/cmd/trustvest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
