package main

import (
	"github.com/hectoduel/hectoduel/internal/cli"
)

func main() {
	cli.Execute()
}
