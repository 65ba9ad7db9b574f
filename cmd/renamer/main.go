package main

import (
	"os"

	"github.com/solatis/renamer/cmd/renamer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
