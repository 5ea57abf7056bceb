package main

import (
	"os"

	"github.com/wikimark/wikiconf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
