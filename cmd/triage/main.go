// triage scores rated customer feedback, escalates negative interactions to
// the ticket tracker and serves analytics over the feedback log.
//
// Usage:
//
//	triage ingest
//	triage submit --rating=1 --feedback="..." --summary="..."
//	triage serve [--addr=:9080]
//	triage export [--from=YYYY-MM-DD] [--to=YYYY-MM-DD] [--sentiment=NEGATIVE] [-o out.csv]
//	triage seed --url=http://localhost:9080 --count=100
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
