package main

import "github.com/foxy/foxy-go/internal/cli"

func main() {
	cli.Execute()
}
