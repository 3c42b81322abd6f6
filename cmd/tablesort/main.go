package main

import (
	"os"

	"github.com/JonMunkholm/tablesort/cmd/tablesort/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
