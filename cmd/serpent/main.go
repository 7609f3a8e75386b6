// Command serpent is the command-line front end for the serpent
// interpreter: tokenize, parse, or run a guest script.
package main

import (
	"os"

	"github.com/abraun/serpent/cmd/serpent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
