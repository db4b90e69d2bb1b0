package main

import "bin-finder/internal/cli"

func main() {
	cli.Execute()
}
