package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okian/triage/internal/domain/intake"
	"github.com/okian/triage/internal/domain/model"
)

func newIngestCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Interactively enter feedback until the sentinel word",
		Long: `Prompts for a rating, the customer feedback and a communication summary,
processes each completed entry and appends it to the feedback log. Typing the
sentinel (default "exit") at any prompt ends the session without a partial record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(cmd.Context(), st.cfg, st.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			handle := func(ctx context.Context, sub model.Submission) error {
				res, err := p.svc.Process(ctx, sub)
				if err != nil {
					return err
				}
				printResult(out, res)
				return nil
			}
			return intake.Run(cmd.Context(), cmd.InOrStdin(), out, handle, intake.WithSentinel(st.cfg.Sentinel))
		},
	}
}
