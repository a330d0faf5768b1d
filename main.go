package main

import (
	"os"

	"github.com/mcorbin/vigil/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
