package main

import (
	"os"

	"github.com/ezppt/deckview/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
