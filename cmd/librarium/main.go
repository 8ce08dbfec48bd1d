package main

import "github.com/librarium-ai/librarium/internal/cli"

// version is set by ldflags at build time.
var version = "dev"

func main() {
	cli.Execute(version)
}
