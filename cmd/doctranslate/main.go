// Package main is a command-line front end for running the document
// pipeline outside Lambda.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
