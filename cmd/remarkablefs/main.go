package main

import (
	"fmt"
	"os"

	"github.com/nick8325/remarkable-fs/cmd/remarkablefs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
