package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	repository "github.com/okian/triage/internal/adapters/repository"
	"github.com/okian/triage/internal/domain/analytics"
)

var exportFlags struct {
	from       string
	to         string
	sentiments []string
	categories []string
	output     string
}

func newExportCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a filtered view of the feedback log as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := analytics.ParseFilter(exportFlags.from, exportFlags.to, exportFlags.sentiments, exportFlags.categories)
			if err != nil {
				return err
			}
			events, err := repository.NewCSVStore(st.cfg.LogPath).ReadAll(cmd.Context())
			if err != nil {
				return err
			}
			events = analytics.Apply(events, f)

			if exportFlags.output == "" || exportFlags.output == "-" {
				return repository.WriteCSV(cmd.OutOrStdout(), events)
			}
			if err := writeFile(exportFlags.output, func(w io.Writer) error {
				return repository.WriteCSV(w, events)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(events), exportFlags.output)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&exportFlags.from, "from", "", "First day to include (YYYY-MM-DD)")
	f.StringVar(&exportFlags.to, "to", "", "Last day to include (YYYY-MM-DD)")
	f.StringSliceVar(&exportFlags.sentiments, "sentiment", nil, "Sentiments to include (repeatable or comma separated)")
	f.StringSliceVar(&exportFlags.categories, "category", nil, "Categories to include (repeatable or comma separated)")
	f.StringVarP(&exportFlags.output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// writeFile creates path and reports the first of the write and close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(file)
}
