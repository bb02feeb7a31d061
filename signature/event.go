package signature

import (
	"errors"
	"fmt"
)

type EventKind int

const (
	// FormalTypeParameter declares a type parameter; Name holds it.
	FormalTypeParameter EventKind = iota
	ClassBound
	InterfaceBound
	SuperClass
	Interface
	ParameterType
	ReturnType
	ExceptionType
	// BaseType carries a one-letter primitive or void code in Name.
	BaseType
	ArrayType
	TypeVariable
	ClassType
	InnerClassType
	// TypeArgument carries '=' for an exact argument, '+' for extends and
	// '-' for super in Wildcard.
	TypeArgument
	UnboundedWildcard
	// End closes the most recent ClassType.
	End
)

var eventKindNames = [...]string{
	FormalTypeParameter: "FormalTypeParameter",
	ClassBound:          "ClassBound",
	InterfaceBound:      "InterfaceBound",
	SuperClass:          "SuperClass",
	Interface:           "Interface",
	ParameterType:       "ParameterType",
	ReturnType:          "ReturnType",
	ExceptionType:       "ExceptionType",
	BaseType:            "BaseType",
	ArrayType:           "ArrayType",
	TypeVariable:        "TypeVariable",
	ClassType:           "ClassType",
	InnerClassType:      "InnerClassType",
	TypeArgument:        "TypeArgument",
	UnboundedWildcard:   "UnboundedWildcard",
	End:                 "End",
}

func (k EventKind) String() string {
	if int(k) >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one step of a parse. Position events (bounds, super types,
// parameters, return and exception types, array elements and type
// arguments) announce that the next complete type in the stream fills that
// position.
type Event struct {
	Kind     EventKind
	Name     string
	Wildcard byte
	// Pos is the offset in the signature where the construct starts.
	Pos int
}

func (e Event) String() string {
	switch e.Kind {
	case FormalTypeParameter, BaseType, TypeVariable, ClassType, InnerClassType:
		return e.Kind.String() + " " + e.Name
	case TypeArgument:
		return e.Kind.String() + " " + string(e.Wildcard)
	}
	return e.Kind.String()
}

type Visitor func(Event)

var ErrMalformed = errors.New("malformed signature")

type MalformedError struct {
	Signature string
	Pos       int
	Msg       string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed signature %q at %d: %s", e.Signature, e.Pos, e.Msg)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }
