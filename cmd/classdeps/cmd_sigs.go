package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classdeps/classfile"
	"github.com/dhamidi/classdeps/signature"
)

func newSigsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sigs <file.class>",
		Short: "Print the generic signatures declared in a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := classfile.ParseFile(args[0])
			if err != nil {
				return fmt.Errorf("parse class file: %w", err)
			}
			printSignatures(cmd.OutOrStdout(), cf)
			return nil
		},
	}
}

// printSignatures writes one line per Signature attribute: the declaration,
// its generic form and, for members, the erased descriptor. Malformed
// signatures are reported in place.
func printSignatures(w io.Writer, cf *classfile.ClassFile) {
	for _, ref := range cf.Signatures() {
		var (
			rendered string
			err      error
		)
		switch ref.Kind {
		case classfile.SignatureOfField:
			var t signature.Type
			if t, err = signature.ParseType(ref.Signature); err == nil {
				rendered = t.String()
			}
		default:
			var s signature.Signature
			if s, err = signature.Parse(ref.Signature); err == nil {
				rendered = s.String()
			}
		}
		if err != nil {
			log.Warningf("%s %s: %s", ref.Kind, ref.Name, err)
			rendered = fmt.Sprintf("<malformed %q>", ref.Signature)
		}

		name := ref.Name
		if ref.Kind == classfile.SignatureOfClass {
			name = classfile.InternalToSourceName(name)
		}
		fmt.Fprintf(w, "%s %s: %s", ref.Kind, name, rendered)
		if erased := erasedDescriptor(ref); erased != "" {
			fmt.Fprintf(w, "  [erased %s]", erased)
		}
		fmt.Fprintln(w)
	}
}

func erasedDescriptor(ref classfile.SignatureRef) string {
	switch ref.Kind {
	case classfile.SignatureOfField:
		if ft, err := classfile.ParseFieldDescriptor(ref.Descriptor); err == nil {
			return ft.String()
		}
	case classfile.SignatureOfMethod:
		if md, err := classfile.ParseMethodDescriptor(ref.Descriptor); err == nil {
			return md.String()
		}
	}
	return ""
}
