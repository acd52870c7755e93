// Command booklist serves a session-local book list manager.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brianhealey/booklist/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "booklist:", err)
		os.Exit(1)
	}
}
