package main

import (
	"os"
)

func main() {
	if err := newCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
