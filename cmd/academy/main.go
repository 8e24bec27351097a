// Command academy is the command-line client for the academy catalog.
package main

import "github.com/mesh-intelligence/academy/internal/cli"

func main() {
	cli.Execute()
}
