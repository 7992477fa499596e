// Command corsctl checks, normalizes and exercises CORS configuration files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
