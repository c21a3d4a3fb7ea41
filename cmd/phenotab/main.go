// Package main provides the phenotab binary entry point.
// Phenotab compiles semantically annotated cohort tables into
// normalized clinical phenotype records.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/phenotab/phenotab/commands"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
