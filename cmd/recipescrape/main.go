// Package main is the entry point for the recipescrape CLI.
package main

import (
	"os"

	"github.com/jmylchreest/recipescrape/cmd/recipescrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
