// Command finboardctl records transactions and budgets and prints the
// dashboard views from the terminal, against the same backend the API uses.
package main

import (
	"fmt"
	"os"

	"finboard/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCmd(&app{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
