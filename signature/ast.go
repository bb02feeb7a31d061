package signature

import "strings"

var baseTypeNames = map[string]string{
	"Z": "boolean",
	"C": "char",
	"B": "byte",
	"S": "short",
	"I": "int",
	"F": "float",
	"J": "long",
	"D": "double",
	"V": "void",
}

type Type interface {
	String() string
	isType()
}

type PrimitiveType struct {
	Code string
}

type ArrayOf struct {
	Elem Type
}

type TypeVar struct {
	Name string
}

// ClassRef is a possibly parameterized class type. Segments[0] is the
// top-level class in internal form; later segments are inner classes.
type ClassRef struct {
	Segments []ClassSegment
}

type ClassSegment struct {
	Name string
	Args []TypeArg
}

// TypeArg is one type argument. Wildcard is '*', '+', '-' or '='; Type is
// nil only for '*'.
type TypeArg struct {
	Wildcard byte
	Type     Type
}

func (*PrimitiveType) isType() {}
func (*ArrayOf) isType()       {}
func (*TypeVar) isType()       {}
func (*ClassRef) isType()      {}

func (t *PrimitiveType) String() string { return baseTypeNames[t.Code] }
func (t *ArrayOf) String() string       { return t.Elem.String() + "[]" }
func (t *TypeVar) String() string       { return t.Name }

// Name returns the binary name of the class, inner classes joined with '$'.
func (t *ClassRef) Name() string {
	names := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		names[i] = s.Name
	}
	return strings.Join(names, "$")
}

func (t *ClassRef) String() string {
	var sb strings.Builder
	for i, s := range t.Segments {
		if i == 0 {
			sb.WriteString(strings.ReplaceAll(s.Name, "/", "."))
		} else {
			sb.WriteByte('.')
			sb.WriteString(s.Name)
		}
		if len(s.Args) > 0 {
			sb.WriteByte('<')
			for j, a := range s.Args {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(a.String())
			}
			sb.WriteByte('>')
		}
	}
	return sb.String()
}

func (a TypeArg) String() string {
	switch a.Wildcard {
	case '*':
		return "?"
	case '+':
		return "? extends " + a.Type.String()
	case '-':
		return "? super " + a.Type.String()
	}
	return a.Type.String()
}

type TypeParameter struct {
	Name string
	// ClassBound is nil when the parameter only has interface bounds.
	ClassBound      Type
	InterfaceBounds []Type
}

func (tp TypeParameter) String() string {
	bounds := tp.InterfaceBounds
	if tp.ClassBound != nil {
		bounds = append([]Type{tp.ClassBound}, bounds...)
	}
	if len(bounds) == 0 {
		return tp.Name
	}
	return tp.Name + " extends " + joinTypes(bounds, " & ")
}

// Signature is implemented by *ClassSignature and *MethodSignature.
type Signature interface {
	String() string
	isSignature()
}

type ClassSignature struct {
	TypeParameters []TypeParameter
	SuperClass     *ClassRef
	Interfaces     []*ClassRef
}

type MethodSignature struct {
	TypeParameters []TypeParameter
	Parameters     []Type
	Return         Type
	Exceptions     []Type
}

func (*ClassSignature) isSignature()  {}
func (*MethodSignature) isSignature() {}

func (s *ClassSignature) String() string {
	var sb strings.Builder
	writeTypeParameters(&sb, s.TypeParameters)
	sb.WriteString("extends ")
	sb.WriteString(s.SuperClass.String())
	if len(s.Interfaces) > 0 {
		types := make([]Type, len(s.Interfaces))
		for i, iface := range s.Interfaces {
			types[i] = iface
		}
		sb.WriteString(" implements ")
		sb.WriteString(joinTypes(types, ", "))
	}
	return sb.String()
}

func (s *MethodSignature) String() string {
	var sb strings.Builder
	writeTypeParameters(&sb, s.TypeParameters)
	sb.WriteByte('(')
	sb.WriteString(joinTypes(s.Parameters, ", "))
	sb.WriteString(") ")
	sb.WriteString(s.Return.String())
	if len(s.Exceptions) > 0 {
		sb.WriteString(" throws ")
		sb.WriteString(joinTypes(s.Exceptions, ", "))
	}
	return sb.String()
}

func writeTypeParameters(sb *strings.Builder, params []TypeParameter) {
	if len(params) == 0 {
		return
	}
	sb.WriteByte('<')
	for i, tp := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tp.String())
	}
	sb.WriteString("> ")
}

func joinTypes(types []Type, sep string) string {
	strs := make([]string, len(types))
	for i, t := range types {
		strs[i] = t.String()
	}
	return strings.Join(strs, sep)
}
