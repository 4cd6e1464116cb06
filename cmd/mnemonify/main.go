// Package main provides the entry point for the mnemonify CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/schierlm/mnemonifier/cmd/mnemonify/commands"
	"github.com/schierlm/mnemonifier/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
