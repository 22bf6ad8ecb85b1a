package main

import (
	"fmt"
	"os"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
