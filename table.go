package hpack

// The dynamic indexing table (spec component C3), modeled directly on
// Apache Traffic Server's XpackDynamicTable / XpackDynamicTableStorage
// (proxy/hdrs/XPACK.cc): a FIFO list of entry descriptors backed by a
// double-buffered byte arena, so that insertion never needs to move
// already-written bytes around.
//
// https://httpwg.org/specs/rfc7541.html#rfc.section.2.3.2

// Interner is an optional, pluggable canonicalization hook invoked on
// every Insert. A host can use it to map common header names (e.g.
// "content-type") onto a single shared backing array instead of
// allocating a fresh copy per entry — the "well-known-string oracle"
// from spec section 1. Returning nil or name unchanged is always
// valid; Interner is never required for correctness.
type Interner func(name []byte) []byte

// LookupKind classifies the result of a table lookup.
type LookupKind uint8

const (
	LookupNone LookupKind = iota
	LookupNameOnly
	LookupExact
)

// LookupResult is the outcome of DynamicTable.LookupByField: a combined
// HPACK index (0 when Kind is LookupNone) and whether the match was
// name-only or exact.
type LookupResult struct {
	Kind  LookupKind
	Index uint64
}

type tableEntry struct {
	absIndex uint64
	offset   uint32
	nameLen  uint32 // logical name length, used for size accounting
	valueLen uint32
	refCount int32
	wksName  []byte // set when Interner canonicalized the name: the
	// arena then holds no name bytes for this entry at all, only value.
}

// storedNameLen returns how many name bytes this entry actually has
// written into the arena (0 when wksName supplies the name instead).
func (e *tableEntry) storedNameLen() uint32 {
	if e.wksName != nil {
		return 0
	}
	return e.nameLen
}

// dynArena is the byte storage backing live dynamic-table entries. Its
// capacity is always 2x the table's maximum_size: the "first half" and
// "second half" of the buffer are never both in active use at once,
// which is what lets write() hand out offsets that stay valid for
// readers until the entry describing them is evicted, without ever
// copying bytes on a plain insert.
type dynArena struct {
	data      []byte
	capacity  uint32
	threshold uint32 // == maximum_size
	head      uint32 // offset of the last byte written
}

func newDynArena(maxSize uint32) *dynArena {
	a := &dynArena{
		capacity:  maxSize * 2,
		threshold: maxSize,
	}
	a.data = make([]byte, a.capacity)
	a.resetHead()
	return a
}

func (a *dynArena) resetHead() {
	if a.capacity == 0 {
		a.head = 0
		return
	}
	a.head = a.capacity - 1
}

// write copies name and value contiguously into the arena and returns
// the offset they were written at.
func (a *dynArena) write(name, value []byte) uint32 {
	n := uint32(len(name) + len(value))
	if n > a.capacity {
		panic("hpack: dynamic table entry larger than arena capacity")
	}

	offset := (a.head + 1) % a.capacity
	if offset != 0 && offset+n > a.capacity {
		panic("hpack: dynamic table arena write would overlap")
	}

	copy(a.data[offset:], name)
	copy(a.data[offset+uint32(len(name)):], value)

	a.head = (a.head + n) % a.capacity
	if a.head > a.threshold {
		// Wrap back to the start for the next write; this entry's
		// bytes still live on past the threshold, in the arena's
		// second half.
		a.head = a.capacity - 1
	}

	return offset
}

func (a *dynArena) read(offset, nameLen, valueLen uint32) (name, value []byte) {
	name = a.data[offset : offset+nameLen]
	value = a.data[offset+nameLen : offset+nameLen+valueLen]
	return name, value
}

// DynamicTable is the per-direction, per-connection HPACK/XPACK
// indexing table. It is not safe for concurrent use (spec section 5:
// single-threaded cooperative per connection/direction).
type DynamicTable struct {
	arena *dynArena

	// entries is kept oldest-first; the combined HPACK index space
	// addresses them most-recent-first, so combined index 62
	// corresponds to entries[len(entries)-1].
	entries []tableEntry

	maxSize   uint32
	currSize  uint32
	nextIndex uint64 // absolute index of the next insertion
	Interner  Interner
}

// NewDynamicTable creates a dynamic table with the given maximum
// size in bytes, as negotiated out of band (spec section 1: HPACK
// doesn't carry SETTINGS negotiation itself).
func NewDynamicTable(maxSize uint32) *DynamicTable {
	return &DynamicTable{
		arena:   newDynArena(maxSize),
		maxSize: maxSize,
	}
}

// Size returns current_size, the sum of len(name)+len(value)+32 over
// all live entries.
func (t *DynamicTable) Size() uint32 { return t.currSize }

// MaximumSize returns the table's configured maximum size in bytes.
func (t *DynamicTable) MaximumSize() uint32 { return t.maxSize }

// IsEmpty reports whether the table currently holds no entries.
func (t *DynamicTable) IsEmpty() bool { return len(t.entries) == 0 }

// Count returns the number of live entries.
func (t *DynamicTable) Count() int { return len(t.entries) }

// LargestAbsoluteIndex returns the absolute index of the most
// recently inserted entry still tracked by nextIndex. It never
// decreases across the table's lifetime, even across evictions and
// capacity changes (spec section 3).
func (t *DynamicTable) LargestAbsoluteIndex() uint64 {
	if t.nextIndex == 0 {
		return 0
	}
	return t.nextIndex - 1
}

// dynamicField returns the live entry at 0-based position pos, most-
// recent first (pos 0 is the most recently inserted entry).
func (t *DynamicTable) dynamicField(pos int) (name, value []byte) {
	e := t.entries[len(t.entries)-1-pos]
	storedName, value := t.arena.read(e.offset, e.storedNameLen(), e.valueLen)
	if e.wksName != nil {
		return e.wksName, value
	}
	return storedName, value
}

// LookupByIndex maps a combined HPACK index (1..=61 static,
// 62.. dynamic, most-recent-first) to its field.
func (t *DynamicTable) LookupByIndex(index uint64) (name, value []byte, err error) {
	if f, ok := staticLookup(index); ok {
		return f.name, f.value, nil
	}
	pos := int(index) - staticTableSize - 1
	if pos < 0 || pos >= len(t.entries) {
		return nil, nil, newErr(ErrCodeCompressionError, "index %d out of range", index)
	}
	name, value = t.dynamicField(pos)
	return name, value, nil
}

// LookupByField scans the static table, then the dynamic table,
// preferring an exact (name+value) match over a name-only match, and
// returns the smallest combined index that matches.
func (t *DynamicTable) LookupByField(name, value []byte) LookupResult {
	if idx, exact := staticLookupField(name, value); idx != 0 {
		if exact {
			return LookupResult{Kind: LookupExact, Index: idx}
		}
		// A dynamic exact match still beats a static name-only match,
		// so keep scanning before committing to this result.
		if dyn := t.lookupDynamic(name, value); dyn.Kind == LookupExact {
			return dyn
		}
		return LookupResult{Kind: LookupNameOnly, Index: idx}
	}
	return t.lookupDynamic(name, value)
}

func (t *DynamicTable) lookupDynamic(name, value []byte) LookupResult {
	var nameOnly uint64
	for pos := 0; pos < len(t.entries); pos++ {
		n, v := t.dynamicField(pos)
		if !fieldNameEqual(n, name) {
			continue
		}
		combined := uint64(staticTableSize + pos + 1)
		if bytesEqual(v, value) {
			return LookupResult{Kind: LookupExact, Index: combined}
		}
		if nameOnly == 0 {
			nameOnly = combined
		}
	}
	if nameOnly != 0 {
		return LookupResult{Kind: LookupNameOnly, Index: nameOnly}
	}
	return LookupResult{Kind: LookupNone}
}

// Insert adds (name, value) as the newest dynamic-table entry.
//
// Per RFC 7541 4.4, it is not an error to insert an entry larger than
// the whole table: doing so simply empties the table and reports
// success without storing anything. Otherwise, oldest entries are
// evicted until there's room; if eviction would have to remove a
// still-referenced entry, the insertion fails cleanly with no partial
// mutation.
func (t *DynamicTable) Insert(name, value []byte) error {
	required := uint32(len(name)+len(value)) + hpackEntryOverhead

	if required > t.maxSize {
		t.clear()
		return nil
	}

	if err := t.makeRoom(required); err != nil {
		return err
	}

	var wks []byte
	if t.Interner != nil {
		wks = t.Interner(name)
	}

	storeName := name
	if wks != nil {
		storeName = nil
	}
	offset := t.arena.write(storeName, value)
	t.entries = append(t.entries, tableEntry{
		absIndex: t.nextIndex,
		offset:   offset,
		nameLen:  uint32(len(name)),
		valueLen: uint32(len(value)),
		wksName:  wks,
	})
	t.nextIndex++
	t.currSize += required

	return nil
}

// makeRoom evicts oldest entries until there is at least `needed`
// bytes of free space, failing without mutating anything if a
// still-referenced entry would have to be evicted first.
func (t *DynamicTable) makeRoom(needed uint32) error {
	free := t.maxSize - t.currSize
	if free >= needed {
		return nil
	}

	// First pass: check feasibility without mutating, so a failure
	// leaves the table exactly as it was (spec section 7: a failed
	// operation must not partially mutate the table).
	evict := 0
	for i := 0; free < needed; i++ {
		if i >= len(t.entries) {
			return newErr(ErrCodeInsertionRejected, "not enough evictable space")
		}
		if t.entries[i].refCount > 0 {
			return newErr(ErrCodeInsertionRejected, "entry %d is referenced", t.entries[i].absIndex)
		}
		free += t.entries[i].nameLen + t.entries[i].valueLen + hpackEntryOverhead
		evict++
	}

	t.evictFront(evict)
	return nil
}

func (t *DynamicTable) evictFront(n int) {
	for i := 0; i < n; i++ {
		e := t.entries[i]
		t.currSize -= e.nameLen + e.valueLen + hpackEntryOverhead
	}
	t.entries = append(t.entries[:0], t.entries[n:]...)
}

func (t *DynamicTable) clear() {
	t.entries = t.entries[:0]
	t.currSize = 0
}

// Ref increments the reference count of the entry at the given
// absolute index, pinning it against eviction. The HPACK codec in this
// package never calls it, since HPACK never holds entries across
// blocked streams; the interface is preserved for QPACK-style callers
// (spec section 4.3).
func (t *DynamicTable) Ref(absIndex uint64) {
	if pos, ok := t.posOfAbsIndex(absIndex); ok {
		t.entries[pos].refCount++
	}
}

// Unref decrements the reference count set by Ref.
func (t *DynamicTable) Unref(absIndex uint64) {
	if pos, ok := t.posOfAbsIndex(absIndex); ok {
		t.entries[pos].refCount--
	}
}

func (t *DynamicTable) posOfAbsIndex(absIndex uint64) (int, bool) {
	for i, e := range t.entries {
		if e.absIndex == absIndex {
			return i, true
		}
	}
	return 0, false
}

// SetMaximumSize changes the table's maximum size. Growing rebuilds
// the arena in a single pass, without evicting anything. Shrinking
// evicts oldest entries until the table fits; if a still-referenced
// entry blocks that, the operation fails and nothing changes (spec
// section 4.3).
func (t *DynamicTable) SetMaximumSize(newSize uint32) error {
	if newSize >= t.maxSize {
		t.growArena(newSize)
		t.maxSize = newSize
		return nil
	}

	// Shrinking: check feasibility before mutating anything. A smaller
	// maximum that still comfortably fits the live entries needs no
	// eviction at all.
	var needed uint32
	if t.currSize > newSize {
		needed = t.currSize - newSize
	}
	var freed uint32
	evict := 0
	for freed < needed {
		if evict >= len(t.entries) {
			return newErr(ErrCodeInsertionRejected, "cannot shrink below referenced entries")
		}
		if t.entries[evict].refCount > 0 {
			return newErr(ErrCodeInsertionRejected, "entry %d is referenced", t.entries[evict].absIndex)
		}
		freed += t.entries[evict].nameLen + t.entries[evict].valueLen + hpackEntryOverhead
		evict++
	}

	t.evictFront(evict)
	// Rebuild at the smaller capacity too, so the arena's footprint
	// tracks 2x the current maximum_size rather than only ever growing
	// (spec section 5: total footprint bounded by 2x maximum_size).
	t.growArena(newSize)
	t.maxSize = newSize
	return nil
}

// growArena rebuilds the storage arena at the given capacity in a
// single pass, copying every live field and rewriting its offset
// (spec section 4.3: "a single rebuild copies live fields into a new
// arena and rewrites offsets"; used for both growth and shrink-time
// rebuilds).
func (t *DynamicTable) growArena(newSize uint32) {
	newArena := newDynArena(newSize)
	for i := range t.entries {
		e := &t.entries[i]
		storedName, value := t.arena.read(e.offset, e.storedNameLen(), e.valueLen)
		e.offset = newArena.write(storedName, value)
	}
	t.arena = newArena
}
