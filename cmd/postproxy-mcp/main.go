package main

import (
	"fmt"
	"os"

	"github.com/postproxy/postproxy-mcp/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "postproxy-mcp: %v\n", err)
		os.Exit(1)
	}
}
