// Package main provides the CLI entrypoint for gatekeeper.
package main

import (
	"os"

	"github.com/andy-wilson/gatekeeper/cmd/gatekeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
