// ABOUTME: Entry point for the leadgen CLI, MCP server and web dashboard
// ABOUTME: Delegates to the cobra command tree in the cli package
package main

import (
	"os"

	"github.com/JFernandez0524/leadgen/cli"
)

var version = "0.1.0"

func main() {
	os.Exit(cli.Execute(version))
}
