// Command bef2dump prints the element tree of a BEF2 message.
//
// Usage:
//
//	bef2dump [file] [--hex] [--envelope] [--max-items n] [--log-level level]
//
// The message is read from file, or from stdin when no file is given.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
