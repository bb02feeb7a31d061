package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	ErrBadMagic   = errors.New("invalid magic number")
	ErrUnknownTag = errors.New("unknown constant pool tag")
)

// UnknownTagError reports a tag byte outside the recognised set, together
// with the pool slot it was read for.
type UnknownTagError struct {
	Tag   ConstantTag
	Index int
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown constant pool tag %d at index %d", e.Tag, e.Index)
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrUnknownTag }

// opaqueWidths lists the payload width of every entry kept as raw bytes.
var opaqueWidths = map[ConstantTag]int{
	ConstantInteger:            4,
	ConstantFloat:              4,
	ConstantFieldref:           4,
	ConstantMethodref:          4,
	ConstantInterfaceMethodref: 4,
	ConstantNameAndType:        4,
	ConstantMethodHandle:       3,
	ConstantMethodType:         2,
	ConstantDynamic:            4,
	ConstantInvokeDynamic:      4,
	ConstantModule:             2,
	ConstantPackage:            2,
}

type Header struct {
	MinorVersion uint16
	MajorVersion uint16
	// Count is constant_pool_count as stored: one more than the number of
	// usable slots.
	Count uint16
}

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) fill(buf []byte) {
	if r.err != nil {
		return
	}
	_, r.err = io.ReadFull(r.r, buf)
	if r.err == io.EOF {
		r.err = io.ErrUnexpectedEOF
	}
}

func (r *reader) readU1() uint8 {
	var buf [1]byte
	r.fill(buf[:])
	return buf[0]
}

func (r *reader) readU2() uint16 {
	var buf [2]byte
	r.fill(buf[:])
	return binary.BigEndian.Uint16(buf[:])
}

func (r *reader) readU4() uint32 {
	var buf [4]byte
	r.fill(buf[:])
	return binary.BigEndian.Uint32(buf[:])
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	// Read through a limit so a corrupt length cannot force a huge allocation.
	var buf bytes.Buffer
	got, err := io.Copy(&buf, io.LimitReader(r.r, int64(n)))
	if err != nil {
		r.err = err
		return nil
	}
	if got < int64(n) {
		r.err = io.ErrUnexpectedEOF
		return nil
	}
	return buf.Bytes()
}

func (r *reader) readHeader() (Header, error) {
	magic := r.readU4()
	if r.err != nil {
		return Header{}, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return Header{}, fmt.Errorf("%w: 0x%X (expected 0xCAFEBABE)", ErrBadMagic, magic)
	}

	h := Header{
		MinorVersion: r.readU2(),
		MajorVersion: r.readU2(),
	}
	if r.err != nil {
		return Header{}, fmt.Errorf("failed to read version: %w", r.err)
	}

	h.Count = r.readU2()
	if r.err != nil {
		return Header{}, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	return h, nil
}

func (r *reader) readConstantPool(count uint16) (ConstantPool, error) {
	if count == 0 {
		return ConstantPool{}, nil
	}
	cp := make(ConstantPool, count-1)
	for i := 1; i < int(count); i++ {
		entry, err := readConstantPoolEntry(r, i)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cp[i-1] = entry
		if entry.Tag().Wide() {
			// The following slot stays nil.
			i++
		}
	}
	return cp, nil
}

// ReadConstantPool reads the header and constant pool of a class file and
// stops there. The rest of the stream is left unread.
func ReadConstantPool(rd io.Reader) (Header, ConstantPool, error) {
	r := &reader{r: rd}
	h, err := r.readHeader()
	if err != nil {
		return Header{}, nil, err
	}
	cp, err := r.readConstantPool(h.Count)
	if err != nil {
		return Header{}, nil, err
	}
	return h, cp, nil
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	h, err := r.readHeader()
	if err != nil {
		return nil, err
	}
	cp, err := r.readConstantPool(h.Count)
	if err != nil {
		return nil, err
	}

	cf := &ClassFile{
		MinorVersion: h.MinorVersion,
		MajorVersion: h.MajorVersion,
		ConstantPool: cp,
		AccessFlags:  AccessFlags(r.readU2()),
		ThisClass:    r.readU2(),
		SuperClass:   r.readU2(),
	}

	interfacesCount := r.readU2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.readU2()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read interfaces: %w", r.err)
	}

	if cf.Fields, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", err)
	}
	if cf.Methods, err = readMembers(r); err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", err)
	}
	if cf.Attributes, err = readAttributes(r); err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}
	return cf, nil
}

func readConstantPoolEntry(r *reader, index int) (ConstantPoolEntry, error) {
	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.err
	}

	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		data := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		return &ConstantUtf8Info{Value: decodeModifiedUtf8(data)}, nil

	case ConstantLong:
		high := r.readU4()
		low := r.readU4()
		if r.err != nil {
			return nil, r.err
		}
		return &ConstantLongInfo{Value: int64(uint64(high)<<32 | uint64(low))}, nil

	case ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		if r.err != nil {
			return nil, r.err
		}
		return &ConstantDoubleInfo{Value: math.Float64frombits(uint64(high)<<32 | uint64(low))}, nil

	case ConstantClass:
		nameIndex := r.readU2()
		if r.err != nil {
			return nil, r.err
		}
		return &ConstantClassInfo{NameIndex: nameIndex}, nil

	case ConstantString:
		stringIndex := r.readU2()
		if r.err != nil {
			return nil, r.err
		}
		return &ConstantStringInfo{StringIndex: stringIndex}, nil
	}

	width, ok := opaqueWidths[tag]
	if !ok {
		return nil, &UnknownTagError{Tag: tag, Index: index}
	}
	payload := r.readBytes(width)
	if r.err != nil {
		return nil, r.err
	}
	return &ConstantOpaqueInfo{Kind: tag, Payload: payload}, nil
}

func readMembers(r *reader) ([]MemberInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	members := make([]MemberInfo, count)
	for i := range members {
		members[i] = MemberInfo{
			AccessFlags:     AccessFlags(r.readU2()),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
		}
		attrs, err := readAttributes(r)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		members[i].Attributes = attrs
	}
	return members, nil
}

func readAttributes(r *reader) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}
	attrs := make([]AttributeInfo, count)
	for i := range attrs {
		nameIndex := r.readU2()
		length := r.readU4()
		info := r.readBytes(int(length))
		if r.err != nil {
			return nil, fmt.Errorf("attribute %d: %w", i, r.err)
		}
		attrs[i] = AttributeInfo{NameIndex: nameIndex, Info: info}
	}
	return attrs, nil
}
