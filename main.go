package main

import (
	"fmt"
	"os"

	"sentinel/cmd"
)

func main() {
	code, err := cmd.Execute(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(code)
}
