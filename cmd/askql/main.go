// Command askql asks databases questions in plain language.
package main

import (
	"os"

	"github.com/askql/askql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
