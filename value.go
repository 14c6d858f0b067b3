package govex

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"
)

// ValueKind tags the concrete type carried by a Value. The numeric values
// match the wire tag byte written before every serialized Value.
type ValueKind byte

const (
	KindString ValueKind = 0
	KindI64    ValueKind = 1
	KindU64    ValueKind = 2
	KindI32    ValueKind = 3
	KindU32    ValueKind = 4
	KindF32    ValueKind = 5
	KindF64    ValueKind = 6
	KindDate   ValueKind = 7
	KindBytes  ValueKind = 8
)

// Value is a tagged union over the field value types the core understands.
// Only one of the typed fields is meaningful, selected by Kind. Values are
// constructed with the typed constructors below rather than by setting
// fields directly.
type Value struct {
	Kind ValueKind

	str   string
	i64   int64
	u64   uint64
	i32   int32
	u32   uint32
	f32   float32
	f64   float64
	date  time.Time
	bytes []byte
}

func StringValue(s string) Value { return Value{Kind: KindString, str: s} }
func I64Value(v int64) Value     { return Value{Kind: KindI64, i64: v} }
func U64Value(v uint64) Value    { return Value{Kind: KindU64, u64: v} }
func I32Value(v int32) Value     { return Value{Kind: KindI32, i32: v} }
func U32Value(v uint32) Value    { return Value{Kind: KindU32, u32: v} }
func F32Value(v float32) Value   { return Value{Kind: KindF32, f32: v} }
func F64Value(v float64) Value   { return Value{Kind: KindF64, f64: v} }
func DateValue(t time.Time) Value {
	return Value{Kind: KindDate, date: t}
}
func BytesValue(b []byte) Value { return Value{Kind: KindBytes, bytes: b} }

func (v Value) String() string    { return v.str }
func (v Value) I64() int64        { return v.i64 }
func (v Value) U64() uint64       { return v.u64 }
func (v Value) I32() int32        { return v.i32 }
func (v Value) U32() uint32       { return v.u32 }
func (v Value) F32() float32      { return v.f32 }
func (v Value) F64() float64      { return v.f64 }
func (v Value) Date() time.Time   { return v.date }
func (v Value) Bytes() []byte     { return v.bytes }

// Serialize writes the Value's tagged wire form: one tag byte followed by
// the type's own encoding (length-prefixed for String/Bytes, fixed-width
// big-endian otherwise).
func (v Value) Serialize(w io.Writer) error {
	if err := writeFixed(w, byte(v.Kind)); err != nil {
		return err
	}
	switch v.Kind {
	case KindString:
		return writeString(w, v.str)
	case KindI64:
		return writeFixed(w, v.i64)
	case KindU64:
		return writeFixed(w, v.u64)
	case KindI32:
		return writeFixed(w, v.i32)
	case KindU32:
		return writeFixed(w, v.u32)
	case KindF32:
		return writeFixed(w, v.f32)
	case KindF64:
		return writeFixed(w, v.f64)
	case KindDate:
		return writeFixed(w, v.date.UnixNano())
	case KindBytes:
		return writeBytes(w, v.bytes)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidValueType, v.Kind)
	}
}

// DeserializeValue reads a tagged Value previously written by Serialize.
func DeserializeValue(r io.Reader) (Value, error) {
	var tag byte
	if err := readFixed(r, &tag); err != nil {
		return Value{}, err
	}
	switch ValueKind(tag) {
	case KindString:
		s, err := readString(r)
		if err != nil {
			return Value{}, err
		}
		return StringValue(s), nil
	case KindI64:
		var x int64
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return I64Value(x), nil
	case KindU64:
		var x uint64
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return U64Value(x), nil
	case KindI32:
		var x int32
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return I32Value(x), nil
	case KindU32:
		var x uint32
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return U32Value(x), nil
	case KindF32:
		var x float32
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return F32Value(x), nil
	case KindF64:
		var x float64
		if err := readFixed(r, &x); err != nil {
			return Value{}, err
		}
		return F64Value(x), nil
	case KindDate:
		var ns int64
		if err := readFixed(r, &ns); err != nil {
			return Value{}, err
		}
		return DateValue(time.Unix(0, ns).UTC()), nil
	case KindBytes:
		b, err := readBytes(r)
		if err != nil {
			return Value{}, err
		}
		return BytesValue(b), nil
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrInvalidValueType, tag)
	}
}

// TermBytes converts a non-string Value directly into its canonical term
// representation: fixed-width big-endian bytes for numeric and date types,
// the raw payload for Bytes. It must not be called on a KindString value —
// string values tokenize into zero or more terms upstream of the core (see
// Index.Add), rather than collapsing to a single term the way every other
// kind does.
func (v Value) TermBytes() ([]byte, error) {
	var buf []byte
	switch v.Kind {
	case KindI64:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v.i64))
	case KindU64:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, v.u64)
	case KindI32:
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(v.i32))
	case KindU32:
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, v.u32)
	case KindF32:
		buf = make([]byte, 4)
		binary.BigEndian.PutUint32(buf, math.Float32bits(v.f32))
	case KindF64:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(v.f64))
	case KindDate:
		buf = make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v.date.UnixNano()))
	case KindBytes:
		buf = v.bytes
	case KindString:
		return nil, fmt.Errorf("govex: TermBytes called on a string value; tokenize instead")
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidValueType, v.Kind)
	}
	return buf, nil
}
