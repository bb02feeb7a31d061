package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classdeps/signature"
)

func newSigCmd() *cobra.Command {
	var (
		asType bool
		events bool
	)

	cmd := &cobra.Command{
		Use:   "sig <signature>",
		Short: "Parse a generic signature and print it in Java syntax",
		Long: `Parse a class or method signature, as stored in a Signature attribute,
and print it in Java syntax. With --type the argument is parsed as a
single field type signature. With --events the raw parse events are
printed with their offsets instead.

Examples:
  classdeps sig '<T:Ljava/lang/Object;>(TT;)V'
  classdeps sig --type 'Ljava/util/List<+Ljava/lang/Number;>;'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSig(cmd.OutOrStdout(), args[0], asType, events)
		},
	}

	cmd.Flags().BoolVarP(&asType, "type", "t", false, "parse a field type signature")
	cmd.Flags().BoolVarP(&events, "events", "e", false, "print parse events")

	return cmd
}

func runSig(w io.Writer, sig string, asType, events bool) error {
	if events {
		v := func(e signature.Event) {
			fmt.Fprintf(w, "%d\t%s\n", e.Pos, e)
		}
		if asType {
			return signature.AcceptType(sig, v)
		}
		return signature.AcceptClassOrMethod(sig, v)
	}

	if asType {
		t, err := signature.ParseType(sig)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, t)
		return nil
	}
	s, err := signature.Parse(sig)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}
