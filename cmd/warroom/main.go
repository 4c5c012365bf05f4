package main

import "github.com/castlebay/warroom-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
