// Package main is the entry point for the gtc CLI tool.
package main

import (
	"os"

	"github.com/sustcsugar/obsidian-gantt-calendar-sub001/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
