package classfile

import (
	"fmt"
	"strings"
)

var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

type MethodDescriptor struct {
	Parameters []FieldType
	// ReturnType is nil for void.
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(md.Parameters[i].String())
	}
	sb.WriteString(") ")
	if md.ReturnType == nil {
		sb.WriteString("void")
	} else {
		sb.WriteString(md.ReturnType.String())
	}
	return sb.String()
}

func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, fmt.Errorf("trailing data in field descriptor %q at %d", desc, n)
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, fmt.Errorf("method descriptor %q does not start with '('", desc)
	}

	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, next, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, *ft)
		i = next
	}
	if i >= len(desc) {
		return nil, fmt.Errorf("method descriptor %q is missing ')'", desc)
	}
	i++

	if i < len(desc) && desc[i] == 'V' && i+1 == len(desc) {
		return md, nil
	}
	ret, next, err := parseFieldType(desc, i)
	if err != nil {
		return nil, err
	}
	if next != len(desc) {
		return nil, fmt.Errorf("trailing data in method descriptor %q at %d", desc, next)
	}
	md.ReturnType = ret
	return md, nil
}

// parseFieldType parses one field type starting at start and returns the
// position just past it.
func parseFieldType(desc string, start int) (*FieldType, int, error) {
	ft := &FieldType{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return nil, 0, fmt.Errorf("descriptor %q ends inside a field type", desc)
	}

	if name, ok := baseTypeNames[desc[i]]; ok {
		ft.BaseType = name
		return ft, i + 1, nil
	}
	if desc[i] != 'L' {
		return nil, 0, fmt.Errorf("unknown descriptor tag %q in %q at %d", desc[i], desc, i)
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon <= 1 {
		return nil, 0, fmt.Errorf("unterminated class name in descriptor %q at %d", desc, i)
	}
	ft.ClassName = desc[i+1 : i+semicolon]
	return ft, i + semicolon + 1, nil
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
