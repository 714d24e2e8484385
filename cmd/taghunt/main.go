// Command taghunt reads and writes URL identifiers on proximity tags.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/taghunt/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "taghunt:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
