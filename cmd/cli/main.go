package main

import (
	"fmt"
	"os"

	"github.com/de-tools/bucket-freshness/pkg/runtime/bootstrap"
	"github.com/de-tools/bucket-freshness/pkg/runtime/terminal"
)

func main() {
	cli := terminal.NewCLI(terminal.Options{
		Registry: bootstrap.DefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
