package main

import (
	"github.com/seedytypey/raceserver/internal/cli"
)

func main() {
	cli.Execute()
}
