// Package main is the entry point for the etf-ddt command.
package main

import "github.com/guadaltel/etf-result-checker/internal/cli"

func main() {
	cli.Execute()
}
