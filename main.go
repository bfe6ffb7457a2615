package main

import "github.com/allenwoods/naive-coreterra/internal/cli"

func main() {
	cli.Execute()
}
