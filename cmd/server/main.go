package main

import "github.com/driftwood-collective/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
