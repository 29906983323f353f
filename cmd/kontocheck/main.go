package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pendergraft/kontocheck/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		if errors.Is(err, cli.ErrNotValid) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}
