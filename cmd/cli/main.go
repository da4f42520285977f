package main

import (
	"fmt"
	"os"

	"github.com/Riwi-io-Medellin/SQL/cmd/cli/root"
	_ "github.com/Riwi-io-Medellin/SQL/cmd/cli/users"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
