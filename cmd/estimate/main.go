// Package main is the entry point for the trustedapp-estimate CLI.
package main

import (
	"os"

	"github.com/trustedapp/site/cmd/estimate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
