package main

import (
	"os"

	"github.com/grovetools/remux/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
