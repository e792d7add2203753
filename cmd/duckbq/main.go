// Package main provides the entry point for the duckbq CLI.
package main

import (
	"fmt"
	"os"

	"github.com/duckbq/duckbq/pkg/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
