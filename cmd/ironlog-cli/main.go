package main

import "github.com/claude/ironlog/internal/cli"

func main() {
	cli.Main()
}
