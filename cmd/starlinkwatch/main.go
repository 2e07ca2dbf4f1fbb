// starlinkwatch tracks Starlink constellation metrics and keeps the
// per-domain incident archives fed from the daily digest.
//
// Usage:
//
//	starlinkwatch metrics
//	starlinkwatch digest [--force]
//	starlinkwatch run
//	starlinkwatch watch
//	starlinkwatch serve
//	starlinkwatch history [--kind=metrics|digest] [--limit=N]
package main

import (
	"context"
	"fmt"
	"os"

	"StarlinkWatch/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
