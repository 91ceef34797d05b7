package hpack

import "testing"

func TestWellKnownInternerCanonicalizesStaticNames(t *testing.T) {
	intern := WellKnownInterner()

	canon := intern([]byte("content-type"))
	if canon == nil {
		t.Fatal("expected content-type to be interned")
	}
	if &canon[0] != &staticTable[30].name[0] {
		t.Fatal("expected interned name to share the static table's backing array")
	}

	if got := intern([]byte("x-custom-unknown")); got != nil {
		t.Fatalf("expected nil for a non-well-known name, got %q", got)
	}
}

func TestDynamicTableUsesInterner(t *testing.T) {
	table := NewDynamicTable(4096)
	table.Interner = WellKnownInterner()

	if err := table.Insert([]byte("content-type"), []byte("text/html")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	name, _, err := table.LookupByIndex(62)
	if err != nil {
		t.Fatalf("LookupByIndex: %v", err)
	}
	if &name[0] != &staticTable[30].name[0] {
		t.Fatal("expected the stored name to be the interned static-table slice")
	}
}
