package signature

import "fmt"

// Builder records events so they can be assembled into a tree. Its Visit
// method is a Visitor.
type Builder struct {
	events []Event
	next   int
}

func (b *Builder) Visit(e Event) {
	b.events = append(b.events, e)
}

func (b *Builder) Events() []Event {
	return b.events
}

func (b *Builder) peek() (Event, bool) {
	if b.next >= len(b.events) {
		return Event{}, false
	}
	return b.events[b.next], true
}

func (b *Builder) peekKind(kind EventKind) bool {
	e, ok := b.peek()
	return ok && e.Kind == kind
}

func (b *Builder) take() Event {
	e := b.events[b.next]
	b.next++
	return e
}

func (b *Builder) typ() Type {
	e := b.take()
	switch e.Kind {
	case BaseType:
		return &PrimitiveType{Code: e.Name}
	case ArrayType:
		return &ArrayOf{Elem: b.typ()}
	case TypeVariable:
		return &TypeVar{Name: e.Name}
	case ClassType:
		return b.classRef(e.Name)
	}
	panic(fmt.Sprintf("signature: unexpected %v event where a type starts", e))
}

func (b *Builder) classRef(name string) *ClassRef {
	ref := &ClassRef{Segments: []ClassSegment{{Name: name}}}
	for {
		e := b.take()
		last := &ref.Segments[len(ref.Segments)-1]
		switch e.Kind {
		case TypeArgument:
			last.Args = append(last.Args, TypeArg{Wildcard: e.Wildcard, Type: b.typ()})
		case UnboundedWildcard:
			last.Args = append(last.Args, TypeArg{Wildcard: '*'})
		case InnerClassType:
			ref.Segments = append(ref.Segments, ClassSegment{Name: e.Name})
		case End:
			return ref
		default:
			panic(fmt.Sprintf("signature: unexpected %v event inside class type", e))
		}
	}
}

func (b *Builder) typeParameters() []TypeParameter {
	var params []TypeParameter
	for b.peekKind(FormalTypeParameter) {
		tp := TypeParameter{Name: b.take().Name}
		if b.peekKind(ClassBound) {
			b.take()
			tp.ClassBound = b.typ()
		}
		for b.peekKind(InterfaceBound) {
			b.take()
			tp.InterfaceBounds = append(tp.InterfaceBounds, b.typ())
		}
		params = append(params, tp)
	}
	return params
}

// Signature assembles the recorded events of a successful
// AcceptClassOrMethod call.
func (b *Builder) Signature() Signature {
	b.next = 0
	params := b.typeParameters()

	if b.peekKind(SuperClass) {
		s := &ClassSignature{TypeParameters: params}
		b.take()
		s.SuperClass = b.typ().(*ClassRef)
		for b.peekKind(Interface) {
			b.take()
			s.Interfaces = append(s.Interfaces, b.typ().(*ClassRef))
		}
		return s
	}

	s := &MethodSignature{TypeParameters: params}
	for b.peekKind(ParameterType) {
		b.take()
		s.Parameters = append(s.Parameters, b.typ())
	}
	b.take()
	s.Return = b.typ()
	for b.peekKind(ExceptionType) {
		b.take()
		s.Exceptions = append(s.Exceptions, b.typ())
	}
	return s
}

// Type assembles the recorded events of a successful AcceptType call.
func (b *Builder) Type() Type {
	b.next = 0
	return b.typ()
}

func Parse(sig string) (Signature, error) {
	var b Builder
	if err := AcceptClassOrMethod(sig, b.Visit); err != nil {
		return nil, err
	}
	return b.Signature(), nil
}

func ParseClass(sig string) (*ClassSignature, error) {
	s, err := Parse(sig)
	if err != nil {
		return nil, err
	}
	cs, ok := s.(*ClassSignature)
	if !ok {
		return nil, &MalformedError{Signature: sig, Pos: 0, Msg: "method signature where a class signature was expected"}
	}
	return cs, nil
}

func ParseMethod(sig string) (*MethodSignature, error) {
	s, err := Parse(sig)
	if err != nil {
		return nil, err
	}
	ms, ok := s.(*MethodSignature)
	if !ok {
		return nil, &MalformedError{Signature: sig, Pos: 0, Msg: "class signature where a method signature was expected"}
	}
	return ms, nil
}

func ParseType(sig string) (Type, error) {
	var b Builder
	if err := AcceptType(sig, b.Visit); err != nil {
		return nil, err
	}
	return b.Type(), nil
}
