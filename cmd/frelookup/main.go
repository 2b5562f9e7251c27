package main

import (
	"fmt"
	"os"

	"FRELookup/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "frelookup:", err)
		os.Exit(1)
	}
}
