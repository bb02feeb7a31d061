// Package classfiletest assembles class files in memory for tests.
package classfiletest

import (
	"encoding/binary"
	"math"
)

type member struct {
	flags     uint16
	name      uint16
	desc      uint16
	signature uint16
}

// Builder accumulates constant pool entries and members. Methods return
// the pool slot of the entry they add.
type Builder struct {
	pool      []byte
	next      uint16
	this      uint16
	super     uint16
	classSig  uint16
	fields    []member
	methods   []member
	sigName   uint16
	utf8Slots map[string]uint16
}

func New() *Builder {
	return &Builder{next: 1, utf8Slots: map[string]uint16{}}
}

func (b *Builder) add(wide bool, entry ...byte) uint16 {
	b.pool = append(b.pool, entry...)
	slot := b.next
	b.next++
	if wide {
		b.next++
	}
	return slot
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

// Utf8 adds a Utf8 entry, reusing an earlier slot holding the same text.
func (b *Builder) Utf8(s string) uint16 {
	if slot, ok := b.utf8Slots[s]; ok {
		return slot
	}
	enc := EncodeModifiedUtf8(s)
	entry := append([]byte{1}, u2(uint16(len(enc)))...)
	slot := b.add(false, append(entry, enc...)...)
	b.utf8Slots[s] = slot
	return slot
}

func (b *Builder) Class(name string) uint16 {
	idx := b.Utf8(name)
	return b.add(false, append([]byte{7}, u2(idx)...)...)
}

func (b *Builder) String(s string) uint16 {
	idx := b.Utf8(s)
	return b.add(false, append([]byte{8}, u2(idx)...)...)
}

func (b *Builder) Integer(v int32) uint16 {
	return b.add(false, binary.BigEndian.AppendUint32([]byte{3}, uint32(v))...)
}

func (b *Builder) Long(v int64) uint16 {
	return b.add(true, binary.BigEndian.AppendUint64([]byte{5}, uint64(v))...)
}

func (b *Builder) Double(v float64) uint16 {
	return b.add(true, binary.BigEndian.AppendUint64([]byte{6}, math.Float64bits(v))...)
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.add(false, append(append([]byte{12}, u2(n)...), u2(d)...)...)
}

func (b *Builder) Methodref(class, nameAndType uint16) uint16 {
	return b.add(false, append(append([]byte{10}, u2(class)...), u2(nameAndType)...)...)
}

func (b *Builder) MethodHandle(kind byte, ref uint16) uint16 {
	return b.add(false, append([]byte{15, kind}, u2(ref)...)...)
}

// Raw adds an entry with an arbitrary tag, for malformed pools.
func (b *Builder) Raw(tag byte, payload ...byte) uint16 {
	return b.add(false, append([]byte{tag}, payload...)...)
}

func (b *Builder) SetThis(name string) *Builder {
	b.this = b.Class(name)
	return b
}

func (b *Builder) SetSuper(name string) *Builder {
	b.super = b.Class(name)
	return b
}

func (b *Builder) ClassSignature(sig string) *Builder {
	b.sigName = b.Utf8("Signature")
	b.classSig = b.Utf8(sig)
	return b
}

func (b *Builder) member(flags uint16, name, desc, sig string) member {
	m := member{flags: flags, name: b.Utf8(name), desc: b.Utf8(desc)}
	if sig != "" {
		b.sigName = b.Utf8("Signature")
		m.signature = b.Utf8(sig)
	}
	return m
}

// Field adds a field; an empty sig omits the Signature attribute.
func (b *Builder) Field(flags uint16, name, desc, sig string) *Builder {
	b.fields = append(b.fields, b.member(flags, name, desc, sig))
	return b
}

func (b *Builder) Method(flags uint16, name, desc, sig string) *Builder {
	b.methods = append(b.methods, b.member(flags, name, desc, sig))
	return b
}

// PoolBytes returns the header and constant pool only.
func (b *Builder) PoolBytes() []byte {
	out := binary.BigEndian.AppendUint32(nil, 0xCAFEBABE)
	out = append(out, u2(0)...)
	out = append(out, u2(52)...)
	out = append(out, u2(b.next)...)
	return append(out, b.pool...)
}

// Bytes returns a complete class file.
func (b *Builder) Bytes() []byte {
	out := b.PoolBytes()
	out = append(out, u2(0x0021)...)
	out = append(out, u2(b.this)...)
	out = append(out, u2(b.super)...)
	out = append(out, u2(0)...)
	out = b.appendMembers(out, b.fields)
	out = b.appendMembers(out, b.methods)
	if b.classSig != 0 {
		out = append(out, u2(1)...)
		out = b.appendSignature(out, b.classSig)
	} else {
		out = append(out, u2(0)...)
	}
	return out
}

func (b *Builder) appendMembers(out []byte, members []member) []byte {
	out = append(out, u2(uint16(len(members)))...)
	for _, m := range members {
		out = append(out, u2(m.flags)...)
		out = append(out, u2(m.name)...)
		out = append(out, u2(m.desc)...)
		if m.signature == 0 {
			out = append(out, u2(0)...)
			continue
		}
		out = append(out, u2(1)...)
		out = b.appendSignature(out, m.signature)
	}
	return out
}

func (b *Builder) appendSignature(out []byte, sig uint16) []byte {
	out = append(out, u2(b.sigName)...)
	out = binary.BigEndian.AppendUint32(out, 2)
	return append(out, u2(sig)...)
}

// EncodeModifiedUtf8 encodes s the way class files store strings.
func EncodeModifiedUtf8(s string) []byte {
	var out []byte
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = appendThree(out, r)
		default:
			r -= 0x10000
			out = appendThree(out, 0xD800+(r>>10))
			out = appendThree(out, 0xDC00+(r&0x3FF))
		}
	}
	return out
}

func appendThree(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}
