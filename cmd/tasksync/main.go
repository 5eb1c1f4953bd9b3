package main

import (
	"fmt"
	"os"

	"github.com/harmoniqs/tasksmd-sync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tasksync: %v\n", err)
		os.Exit(1)
	}
}
