// Package main is the noticeboard server and admin CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/noticeboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
