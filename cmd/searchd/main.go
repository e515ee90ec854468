// Package main provides the entry point for the searchd CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/searchd/cmd/searchd/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
