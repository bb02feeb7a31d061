package main

import (
	"fmt"
	"io"

	difflib "github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/dhamidi/classdeps/closure"
	"github.com/dhamidi/classdeps/store"
)

func newDiffCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "diff <run-a> <run-b>",
		Short: "Show how the closures of two recorded runs differ",
		Long: `Print a unified diff between the closures of two recorded runs. Runs
are named by id or by an unambiguous id prefix, as listed by "runs".
Each line is a class file followed by the classpath entry it came from,
so classes that moved between entries show up too.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()
			return diffRuns(cmd.OutOrStdout(), st, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "classdeps.db", "SQLite database of recorded runs")

	return cmd
}

func diffRuns(w io.Writer, st *store.Store, a, b string) error {
	idA, depsA, err := loadRun(st, a)
	if err != nil {
		return err
	}
	idB, depsB, err := loadRun(st, b)
	if err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        renderDeps(depsA),
		B:        renderDeps(depsB),
		FromFile: idA,
		ToFile:   idB,
		Context:  2,
	})
	if err != nil {
		return fmt.Errorf("diff runs: %w", err)
	}
	fmt.Fprint(w, diff)
	return nil
}

func loadRun(st *store.Store, prefix string) (string, closure.DependencySet, error) {
	id, err := st.Resolve(prefix)
	if err != nil {
		return "", nil, err
	}
	deps, err := st.Deps(id)
	if err != nil {
		return "", nil, err
	}
	return id, deps, nil
}

func renderDeps(deps closure.DependencySet) []string {
	lines := make([]string, 0, len(deps))
	for _, name := range deps.Sorted() {
		lines = append(lines, fmt.Sprintf("%s.class\t%s\n", name, deps[name]))
	}
	return lines
}
