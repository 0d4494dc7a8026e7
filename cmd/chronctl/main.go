package main

import (
	"os"

	"github.com/chroniclehq/chronicle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
