package main

import (
	"os"

	"github.com/netguru/dotty-dns/cmd/dotty/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
