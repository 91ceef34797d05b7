package hpack

import "testing"

func TestStaticLookup(t *testing.T) {
	f, ok := staticLookup(1)
	if !ok || string(f.name) != ":authority" {
		t.Fatalf("staticLookup(1) = %+v, %v", f, ok)
	}

	f, ok = staticLookup(8)
	if !ok || string(f.name) != ":status" || string(f.value) != "200" {
		t.Fatalf("staticLookup(8) = %+v, %v", f, ok)
	}

	f, ok = staticLookup(61)
	if !ok || string(f.name) != "www-authenticate" {
		t.Fatalf("staticLookup(61) = %+v, %v", f, ok)
	}

	if _, ok := staticLookup(0); ok {
		t.Fatal("staticLookup(0) should be out of range")
	}
	if _, ok := staticLookup(62); ok {
		t.Fatal("staticLookup(62) should be out of range")
	}
}

func TestStaticLookupField(t *testing.T) {
	idx, exact := staticLookupField([]byte(":method"), []byte("GET"))
	if idx != 2 || !exact {
		t.Fatalf("lookup(:method, GET) = (%d, %v), want (2, true)", idx, exact)
	}

	idx, exact = staticLookupField([]byte(":method"), []byte("PATCH"))
	if idx != 2 || exact {
		t.Fatalf("lookup(:method, PATCH) = (%d, %v), want (2, false)", idx, exact)
	}

	idx, exact = staticLookupField([]byte("x-not-present"), []byte("v"))
	if idx != 0 || exact {
		t.Fatalf("lookup(x-not-present) = (%d, %v), want (0, false)", idx, exact)
	}
}
