// Package main is the entry point for the paramsweep CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/paramsweep/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
