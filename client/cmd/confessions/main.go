package main

import (
	"os"

	"github.com/itchan-dev/confessions/client/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
