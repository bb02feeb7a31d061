package classfile

import "encoding/binary"

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []MemberInfo
	Methods      []MemberInfo
	Attributes   []AttributeInfo
}

// MemberInfo is a field_info or method_info record. Attributes are kept
// undecoded.
type MemberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
}

type SignatureKind int

const (
	SignatureOfClass SignatureKind = iota
	SignatureOfField
	SignatureOfMethod
)

func (k SignatureKind) String() string {
	switch k {
	case SignatureOfClass:
		return "class"
	case SignatureOfField:
		return "field"
	case SignatureOfMethod:
		return "method"
	}
	return "unknown"
}

// SignatureRef is one Signature attribute together with the declaration
// that carries it.
type SignatureRef struct {
	Kind       SignatureKind
	Name       string
	Descriptor string
	Signature  string
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (m *MemberInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MemberInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

// Signatures collects the Signature attributes of the class, then its
// fields, then its methods, in declaration order. Synthetic and bridge
// members are skipped.
func (cf *ClassFile) Signatures() []SignatureRef {
	var refs []SignatureRef
	cp := cf.ConstantPool

	if sig, ok := signatureOf(cp, cf.Attributes); ok {
		refs = append(refs, SignatureRef{
			Kind:      SignatureOfClass,
			Name:      cf.ClassName(),
			Signature: sig,
		})
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.AccessFlags.IsSynthetic() {
			continue
		}
		if sig, ok := signatureOf(cp, f.Attributes); ok {
			refs = append(refs, SignatureRef{
				Kind:       SignatureOfField,
				Name:       f.Name(cp),
				Descriptor: f.Descriptor(cp),
				Signature:  sig,
			})
		}
	}
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.AccessFlags.IsSynthetic() || m.AccessFlags.IsBridge() {
			continue
		}
		if sig, ok := signatureOf(cp, m.Attributes); ok {
			refs = append(refs, SignatureRef{
				Kind:       SignatureOfMethod,
				Name:       m.Name(cp),
				Descriptor: m.Descriptor(cp),
				Signature:  sig,
			})
		}
	}
	return refs
}

func signatureOf(cp ConstantPool, attrs []AttributeInfo) (string, bool) {
	for _, a := range attrs {
		if cp.GetUtf8(a.NameIndex) != "Signature" || len(a.Info) < 2 {
			continue
		}
		idx := binary.BigEndian.Uint16(a.Info[0:2])
		if sig := cp.GetUtf8(idx); sig != "" {
			return sig, true
		}
	}
	return "", false
}
