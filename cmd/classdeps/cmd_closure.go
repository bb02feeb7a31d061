package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classdeps/closure"
	"github.com/dhamidi/classdeps/store"
)

type closureOptions struct {
	excludes    []string
	excludeFile string
	record      string
}

func newClosureCmd() *cobra.Command {
	var opts closureOptions

	cmd := &cobra.Command{
		Use:   "closure <roots-file> [classpath]",
		Short: "Print the class files reachable from a list of root classes",
		Long: `Print every class file reachable from the root classes listed in
<roots-file>, one name per line (e.g. com/example/Main or
com/example/Main.class).

A class is reachable when its name appears as a string in the constant
pool of a reachable class and a matching .class file exists on the
classpath. The classpath lists directories and .jar/.zip files and
defaults to $CLASSPATH. The first entry that has a class wins.

Examples:
  classdeps closure roots.txt build/classes:lib/dep.jar
  classdeps closure roots.txt --exclude 'java/**' --record runs.db`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			classpath := os.Getenv("CLASSPATH")
			if len(args) == 2 {
				classpath = args[1]
			}
			return runClosure(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], classpath, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.excludes, "exclude", "x", nil, "gitignore-style pattern of class names to skip (repeatable)")
	cmd.Flags().StringVar(&opts.excludeFile, "exclude-file", "", "file of gitignore-style patterns of class names to skip")
	cmd.Flags().StringVar(&opts.record, "record", "", "save the run to this SQLite database")

	return cmd
}

func runClosure(out, errOut io.Writer, rootsFile, classpath string, opts closureOptions) error {
	f, err := os.Open(rootsFile)
	if err != nil {
		return fmt.Errorf("open roots file: %w", err)
	}
	roots, err := closure.ReadRoots(f)
	f.Close()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return fmt.Errorf("no root classes in %s", rootsFile)
	}

	paths := closure.SplitClasspath(classpath)
	if len(paths) == 0 {
		return fmt.Errorf("empty classpath: pass one or set CLASSPATH")
	}

	exclude, err := closure.CompileExclude(opts.excludes, opts.excludeFile)
	if err != nil {
		return err
	}

	log.Infof("computing closure of %d roots over %d classpath entries", len(roots), len(paths))
	deps := closure.Compute(roots, paths, closure.WithExclude(exclude))
	for _, name := range deps.Sorted() {
		fmt.Fprintf(out, "%s.class\n", name)
	}

	if opts.record == "" {
		return nil
	}
	st, err := store.Open(opts.record)
	if err != nil {
		return err
	}
	defer st.Close()
	run, err := st.Save(roots, paths, deps)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	fmt.Fprintf(errOut, "recorded run %s\n", run.ID)
	return nil
}
