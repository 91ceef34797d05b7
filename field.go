package hpack

import (
	"bytes"
	"sync"
)

// Field is a decoded or to-be-encoded header field: a (name, value)
// pair of byte strings. Names are expected to already be lowercase
// ASCII on the wire; the codec enforces this on decode of literal
// names (see representation.go).
//
// Use AcquireField to get a pooled Field and ReleaseField to return it.
type Field struct {
	name, value []byte
}

var fieldPool = sync.Pool{
	New: func() interface{} {
		return &Field{}
	},
}

// AcquireField gets a Field from the pool.
func AcquireField() *Field {
	return fieldPool.Get().(*Field)
}

// ReleaseField resets f and returns it to the pool.
func ReleaseField(f *Field) {
	f.Reset()
	fieldPool.Put(f)
}

// Reset clears f's name and value, keeping the backing arrays.
func (f *Field) Reset() {
	f.name = f.name[:0]
	f.value = f.value[:0]
}

// Name returns the field's name.
func (f *Field) Name() string { return string(f.name) }

// Value returns the field's value.
func (f *Field) Value() string { return string(f.value) }

// NameBytes returns the field's name bytes. The caller must not
// retain the slice past the next mutating call on f.
func (f *Field) NameBytes() []byte { return f.name }

// ValueBytes returns the field's value bytes. The caller must not
// retain the slice past the next mutating call on f.
func (f *Field) ValueBytes() []byte { return f.value }

// SetName sets f's name.
func (f *Field) SetName(name string) { f.name = append(f.name[:0], name...) }

// SetValue sets f's value.
func (f *Field) SetValue(value string) { f.value = append(f.value[:0], value...) }

// SetNameBytes sets f's name bytes.
func (f *Field) SetNameBytes(name []byte) { f.name = append(f.name[:0], name...) }

// SetValueBytes sets f's value bytes.
func (f *Field) SetValueBytes(value []byte) { f.value = append(f.value[:0], value...) }

// Size returns the field's contribution to a table's current_size,
// per RFC 7541 4.1: len(name) + len(value) + 32.
func (f *Field) Size() int {
	return len(f.name) + len(f.value) + hpackEntryOverhead
}

// hpackEntryOverhead is the fixed per-entry accounting overhead, RFC
// 7541 4.1, covering pointers and housekeeping the wire format does
// not otherwise charge for.
const hpackEntryOverhead = 32

// CopyTo copies f's name and value into other.
func (f *Field) CopyTo(other *Field) {
	other.name = append(other.name[:0], f.name...)
	other.value = append(other.value[:0], f.value...)
}

// IsPseudo reports whether f is an HTTP/2 pseudo-header (name starts
// with ':').
func (f *Field) IsPseudo() bool {
	return len(f.name) > 0 && f.name[0] == ':'
}

func fieldNameEqual(a, b []byte) bool {
	return bytes.EqualFold(a, b)
}

func bytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// HeaderSink receives decoded fields from DecodeBlock, in order. It
// is the abstraction boundary this codec uses instead of owning host
// header storage directly (spec: HeaderSink/HeaderSource capability).
// A host's real header-heap implementation (the MIME field storage
// this spec treats as an external collaborator) would implement this
// over its own types; FieldList (sink.go) is the in-memory reference
// implementation used by this package's own tests.
type HeaderSink interface {
	// AddField delivers one decoded field. name and value are only
	// valid for the duration of the call; implementations that need to
	// retain them must copy.
	AddField(name, value []byte)
}

// HeaderSource supplies fields to EncodeBlock, in order. It is
// finite and not restartable: ForEachField is called exactly once per
// EncodeBlock call, start to finish.
type HeaderSource interface {
	// ForEachField invokes fn once per field, in encoding order. It
	// stops and returns fn's error, if any.
	ForEachField(fn func(name, value []byte) error) error
}
