package main

import "refdocs/internal/cli"

func main() {
	cli.Execute()
}
