// Command qprog compiles quantum circuits and runs them on hosted backends
// or the local simulators.
package main

import (
	"os"

	"github.com/roach88/qprog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
