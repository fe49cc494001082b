// Command ochoko-admin serves the sake catalog admin console and offers
// the same administration tasks on the command line.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	c := newCLI(os.Stdin, os.Stdout, os.Stderr)
	if err := c.execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
