package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/okian/triage/internal/domain/model"
)

var submitFlags struct {
	rating   int
	feedback string
	summary  string
	asJSON   bool
}

func newSubmitCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Process a single feedback entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := buildPipeline(cmd.Context(), st.cfg, st.log)
			if err != nil {
				return err
			}
			res, err := p.svc.Process(cmd.Context(), model.Submission{
				Rating:   submitFlags.rating,
				Feedback: submitFlags.feedback,
				Summary:  submitFlags.summary,
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if submitFlags.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(out, res)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&submitFlags.rating, "rating", 0, "Customer rating 1-5 (required)")
	f.StringVar(&submitFlags.feedback, "feedback", "", "Customer feedback text")
	f.StringVar(&submitFlags.summary, "summary", "", "Communication summary")
	f.BoolVar(&submitFlags.asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
