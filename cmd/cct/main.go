package main

import "github.com/ravik/cct/internal/cli"

func main() {
	cli.Execute()
}
