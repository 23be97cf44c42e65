package main

import "buste/internal/cli"

func main() {
	cli.Execute()
}
