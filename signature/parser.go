// Package signature parses the generic signature strings stored in class
// file Signature attributes.
//
// The parser is a single left-to-right pass with one character of
// lookahead. It reports what it recognises as a stream of Events; Parse,
// ParseClass, ParseMethod and ParseType assemble that stream into a tree.
package signature

import (
	"fmt"
	"strings"
)

type parser struct {
	sig string
	v   Visitor
}

func (p *parser) emit(kind EventKind, pos int, name string) {
	p.v(Event{Kind: kind, Name: name, Pos: pos})
}

func (p *parser) fail(pos int, format string, args ...any) error {
	return &MalformedError{Signature: p.sig, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// AcceptClassOrMethod parses a ClassSignature or a MethodTypeSignature,
// deciding by whether a '(' follows the optional type parameters. Events
// delivered before an error are not retracted.
func AcceptClassOrMethod(sig string, v Visitor) error {
	p := &parser{sig: sig, v: v}
	if sig == "" {
		return p.fail(0, "empty signature")
	}

	pos := 0
	var err error
	if sig[0] == '<' {
		if pos, err = p.formalTypeParameters(1); err != nil {
			return err
		}
	}

	if pos < len(sig) && sig[pos] == '(' {
		return p.methodSignature(pos + 1)
	}
	return p.classSignature(pos)
}

// AcceptType parses a single FieldTypeSignature or base type occupying the
// whole string.
func AcceptType(sig string, v Visitor) error {
	p := &parser{sig: sig, v: v}
	pos, err := p.parseType(0, true)
	if err != nil {
		return err
	}
	if pos != len(sig) {
		return p.fail(pos, "unexpected %q after type", sig[pos])
	}
	return nil
}

func (p *parser) formalTypeParameters(pos int) (int, error) {
	for {
		colon := strings.IndexByte(p.sig[pos:], ':')
		if colon < 0 {
			return 0, p.fail(pos, "type parameter without ':'")
		}
		name := p.sig[pos : pos+colon]
		if name == "" || strings.ContainsAny(name, ";<>/.[") {
			return 0, p.fail(pos, "invalid type parameter name %q", name)
		}
		p.emit(FormalTypeParameter, pos, name)
		pos += colon + 1

		var err error
		if pos < len(p.sig) && strings.IndexByte("L[T", p.sig[pos]) >= 0 {
			p.emit(ClassBound, pos, "")
			if pos, err = p.parseType(pos, false); err != nil {
				return 0, err
			}
		}
		for pos < len(p.sig) && p.sig[pos] == ':' {
			pos++
			p.emit(InterfaceBound, pos, "")
			if pos, err = p.reference(pos); err != nil {
				return 0, err
			}
		}

		if pos >= len(p.sig) {
			return 0, p.fail(pos, "type parameters without '>'")
		}
		if p.sig[pos] == '>' {
			return pos + 1, nil
		}
	}
}

func (p *parser) methodSignature(pos int) error {
	var err error
	for {
		if pos >= len(p.sig) {
			return p.fail(pos, "parameter list without ')'")
		}
		if p.sig[pos] == ')' {
			break
		}
		p.emit(ParameterType, pos, "")
		if pos, err = p.parseType(pos, false); err != nil {
			return err
		}
	}
	pos++

	p.emit(ReturnType, pos, "")
	if pos, err = p.parseType(pos, true); err != nil {
		return err
	}

	for pos < len(p.sig) {
		if p.sig[pos] != '^' {
			return p.fail(pos, "expected '^' before exception type, got %q", p.sig[pos])
		}
		pos++
		if pos >= len(p.sig) || (p.sig[pos] != 'L' && p.sig[pos] != 'T') {
			return p.fail(pos, "exception type must be a class or type variable")
		}
		p.emit(ExceptionType, pos, "")
		if pos, err = p.parseType(pos, false); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) classSignature(pos int) error {
	if pos >= len(p.sig) {
		return p.fail(pos, "missing superclass")
	}
	kind := SuperClass
	for pos < len(p.sig) {
		if p.sig[pos] != 'L' {
			return p.fail(pos, "super type must be a class type, got %q", p.sig[pos])
		}
		p.emit(kind, pos, "")
		var err error
		if pos, err = p.classType(pos); err != nil {
			return err
		}
		kind = Interface
	}
	return nil
}

// reference parses a type that must not be primitive: a class type, an
// array or a type variable.
func (p *parser) reference(pos int) (int, error) {
	if pos >= len(p.sig) {
		return 0, p.fail(pos, "unexpected end of signature")
	}
	if strings.IndexByte("L[T", p.sig[pos]) < 0 {
		return 0, p.fail(pos, "expected reference type, got %q", p.sig[pos])
	}
	return p.parseType(pos, false)
}

// parseType parses one type starting at pos and returns the offset of the
// first byte after it.
func (p *parser) parseType(pos int, allowVoid bool) (int, error) {
	if pos >= len(p.sig) {
		return 0, p.fail(pos, "unexpected end of signature")
	}

	switch c := p.sig[pos]; c {
	case 'Z', 'C', 'B', 'S', 'I', 'F', 'J', 'D':
		p.emit(BaseType, pos, string(c))
		return pos + 1, nil

	case 'V':
		if !allowVoid {
			return 0, p.fail(pos, "void is only allowed as a return type")
		}
		p.emit(BaseType, pos, "V")
		return pos + 1, nil

	case '[':
		p.emit(ArrayType, pos, "")
		return p.parseType(pos+1, false)

	case 'T':
		end := strings.IndexByte(p.sig[pos+1:], ';')
		if end < 0 {
			return 0, p.fail(pos, "type variable without ';'")
		}
		name := p.sig[pos+1 : pos+1+end]
		if name == "" || strings.ContainsAny(name, "<>/.[:") {
			return 0, p.fail(pos+1, "invalid type variable name %q", name)
		}
		p.emit(TypeVariable, pos, name)
		return pos + end + 2, nil

	case 'L':
		return p.classType(pos)

	case '*', '+', '-':
		return 0, p.fail(pos, "wildcard %q outside type arguments", c)

	default:
		return 0, p.fail(pos, "unknown type tag %q", c)
	}
}

// classType parses L<name>[<args>](.<name>[<args>])*; starting at the 'L'.
func (p *parser) classType(pos int) (int, error) {
	pos++
	start := pos
	kind := ClassType
	reported := false

	for {
		if pos >= len(p.sig) {
			return 0, p.fail(pos, "class type without ';'")
		}
		switch c := p.sig[pos]; c {
		case '.', ';':
			if !reported {
				if pos == start {
					return 0, p.fail(pos, "empty class name")
				}
				p.emit(kind, start, p.sig[start:pos])
			}
			if c == ';' {
				p.emit(End, pos, "")
				return pos + 1, nil
			}
			pos++
			start = pos
			kind = InnerClassType
			reported = false

		case '<':
			if pos == start {
				return 0, p.fail(pos, "empty class name")
			}
			p.emit(kind, start, p.sig[start:pos])
			reported = true
			var err error
			if pos, err = p.typeArguments(pos + 1); err != nil {
				return 0, err
			}
			if pos < len(p.sig) && p.sig[pos] != '.' && p.sig[pos] != ';' {
				return 0, p.fail(pos, "expected '.' or ';' after type arguments, got %q", p.sig[pos])
			}

		case '[', '>':
			return 0, p.fail(pos, "unexpected %q in class name", c)

		default:
			pos++
		}
	}
}

func (p *parser) typeArguments(pos int) (int, error) {
	if pos < len(p.sig) && p.sig[pos] == '>' {
		return 0, p.fail(pos, "empty type argument list")
	}
	var err error
	for {
		if pos >= len(p.sig) {
			return 0, p.fail(pos, "type arguments without '>'")
		}
		switch c := p.sig[pos]; c {
		case '>':
			return pos + 1, nil
		case '*':
			p.emit(UnboundedWildcard, pos, "")
			pos++
		case '+', '-':
			p.v(Event{Kind: TypeArgument, Wildcard: c, Pos: pos})
			if pos, err = p.reference(pos + 1); err != nil {
				return 0, err
			}
		default:
			p.v(Event{Kind: TypeArgument, Wildcard: '=', Pos: pos})
			if pos, err = p.reference(pos); err != nil {
				return 0, err
			}
		}
	}
}
