// Command tiesradapt runs noise and channel adaptation over WAV files and
// manages the persisted adaptation state.
//
// Usage:
//
//	tiesradapt [--config FILE] [-v] <command> [args]
//
// Commands:
//
//	run          adapt a model to one or more WAV files
//	state show   print a persisted adaptation state
//	state clear  delete a persisted adaptation state
//	state list   list stored keys (badger backend)
//	model synth  write a synthetic model for experiments
package main

import (
	"fmt"
	"os"

	"github.com/proegssilb/tiesr-dialer-sub000/cmd/tiesradapt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
