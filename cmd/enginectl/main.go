package main

import "enginectl/internal/cli"

func main() {
	cli.Execute()
}
