package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ppiankov/benchforge/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		if errors.Is(err, cli.ErrInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
