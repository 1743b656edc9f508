package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/triage/internal/loadgen"
)

var seedFlags struct {
	url     string
	count   int
	workers int
	timeout time.Duration
	output  string
	verbose bool
}

func newSeedCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Post synthetic feedback to a running server",
		Long: `Generates synthetic submissions across every sentiment, posts them
concurrently to POST /api/feedback and verifies that the feedback log grew by
the number of accepted submissions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := loadgen.Run(cmd.Context(), loadgen.Config{
				BaseURL:    seedFlags.url,
				Count:      seedFlags.count,
				Workers:    seedFlags.workers,
				Timeout:    seedFlags.timeout,
				OutputFile: seedFlags.output,
				Verbose:    seedFlags.verbose,
				Logger:     st.log.Named("seed"),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted: %d (accepted: %d, rejected: %d, failed: %d)\n",
				stats.Submitted, stats.Accepted, stats.Rejected, stats.Failed)
			fmt.Fprintf(out, "Escalated: %d, tickets: %d\n", stats.Escalated, stats.Tickets)
			fmt.Fprintf(out, "Log records: %d, duration: %s\n", stats.LogTotal, stats.Duration.Round(time.Millisecond))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&seedFlags.url, "url", loadgen.DefaultBaseURL, "Base URL of the server")
	f.IntVar(&seedFlags.count, "count", loadgen.DefaultCount, "Number of submissions")
	f.IntVar(&seedFlags.workers, "workers", loadgen.DefaultWorkers, "Concurrent requests")
	f.DurationVar(&seedFlags.timeout, "timeout", loadgen.DefaultTimeout, "HTTP request timeout")
	f.StringVar(&seedFlags.output, "output", "", "Save generated submissions as JSON")
	f.BoolVar(&seedFlags.verbose, "verbose", false, "Log every submission")
	return cmd
}
