package main

import (
	"os"

	"github.com/room77/zeus/internal/cli"
)

func main() {
	os.Exit(cli.RunWithArgs(os.Args[1:]))
}
