// Command cutroom runs the timeline editing engine.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cutroom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cutroom:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
