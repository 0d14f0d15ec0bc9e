package main

import "coderag/internal/cli"

func main() {
	cli.Execute()
}
