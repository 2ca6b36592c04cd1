package main

import (
	"os"

	"github.com/screenlore/go-screenlore/cmd/screenlore"
)

func main() {
	if err := screenlore.Execute(); err != nil {
		os.Exit(1)
	}
}
