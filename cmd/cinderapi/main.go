package main

import (
	"os"
	"runtime"

	"cinderapi/internal/cli"
	"cinderapi/internal/compiler"
)

func main() {
	facts := compiler.Facts{ProcessorCount: runtime.NumCPU()}
	os.Exit(cli.Execute(os.Args[1:], os.Environ(), facts, os.Stdout, os.Stderr))
}
