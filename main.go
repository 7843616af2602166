package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/meshops/meshctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// The health command prints its own verdict; the sentinel only
		// carries the exit status.
		if !errors.Is(err, cmd.ErrUnhealthy) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
