package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("classdeps")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose int

	rootCmd := &cobra.Command{
		Use:   "classdeps",
		Short: "Class file dependency closures and generic signatures",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbose, nil)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")

	rootCmd.AddCommand(newClosureCmd())
	rootCmd.AddCommand(newSigCmd())
	rootCmd.AddCommand(newSigsCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newDiffCmd())

	return rootCmd
}
