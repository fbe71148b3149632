// main is the entry point of the local-crud application.
//
// Every subcommand starts the same way:
//  1. Load configuration from a YAML file (--config or CONFIG_PATH)
//  2. Initialise the logger
//  3. Open the SQLite key-value store
//
// and then either runs one controller operation and exits, or (serve)
// starts the HTTP API and blocks until SIGINT / SIGTERM.
//
//	go run ./cmd/local-crud --config=config/local.yaml users add --name Amy --email a@b.com --age 30
//	go run ./cmd/local-crud --config=config/local.yaml serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
