package main

import (
	"github.com/gdsfactory/gf/internal/cli"
)

func main() {
	cli.Execute()
}
