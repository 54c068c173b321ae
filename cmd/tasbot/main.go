package main

import "github.com/ddugovic/tasbot/internal/cli"

func main() {
	cli.Execute()
}
