// Command gitlet is a small local version-control system.
package main

import (
	"os"

	"github.com/systemshift/gitlet/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	return cli.Execute(os.Args[1:])
}
