package hpack

// FieldList is a simple, in-memory HeaderSink and HeaderSource: an
// ordered slice of decoded or to-be-encoded fields. It is the
// reference capability implementation used by this package's own
// tests and by hosts that don't have their own header-heap storage to
// adapt (spec section 3: "the codec never owns host header storage",
// so this type is a convenience, not a requirement).
type FieldList struct {
	fields []Field
}

// AddField implements HeaderSink by appending a copy of name/value.
func (l *FieldList) AddField(name, value []byte) {
	l.fields = append(l.fields, Field{
		name:  append([]byte(nil), name...),
		value: append([]byte(nil), value...),
	})
}

// ForEachField implements HeaderSource by iterating the list in
// order.
func (l *FieldList) ForEachField(fn func(name, value []byte) error) error {
	for i := range l.fields {
		if err := fn(l.fields[i].name, l.fields[i].value); err != nil {
			return err
		}
	}
	return nil
}

// Add appends a field built from Go strings; a convenience for tests
// and simple encoder callers.
func (l *FieldList) Add(name, value string) {
	l.fields = append(l.fields, Field{name: []byte(name), value: []byte(value)})
}

// Len returns the number of fields currently held.
func (l *FieldList) Len() int { return len(l.fields) }

// At returns the field at index i.
func (l *FieldList) At(i int) Field { return l.fields[i] }

// Reset empties the list for reuse.
func (l *FieldList) Reset() { l.fields = l.fields[:0] }
