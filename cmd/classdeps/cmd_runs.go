package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dhamidi/classdeps/store"
)

func newRunsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List closure runs saved with closure --record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			return listRuns(cmd.OutOrStdout(), st)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "classdeps.db", "SQLite database of recorded runs")

	return cmd
}

func listRuns(w io.Writer, st *store.Store) error {
	runs, err := st.Runs()
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Fprintf(w, "%s  %-16s %6d classes  roots: %s\n",
			run.ID[:8], humanize.Time(run.CreatedAt), run.Count, strings.Join(run.Roots, ", "))
	}
	return nil
}
