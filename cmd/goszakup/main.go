// Command goszakup builds procurement reports from the goszakup API.
package main

import (
	"os"

	"goszakup/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
