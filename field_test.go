package hpack

import "testing"

func TestFieldSize(t *testing.T) {
	f := AcquireField()
	defer ReleaseField(f)

	f.SetName("content-type")
	f.SetValue("text/html")

	want := len("content-type") + len("text/html") + hpackEntryOverhead
	if got := f.Size(); got != want {
		t.Fatalf("Size() = %d, want %d", got, want)
	}
}

func TestFieldIsPseudo(t *testing.T) {
	f := &Field{}
	f.SetName(":path")
	if !f.IsPseudo() {
		t.Fatal("expected :path to be a pseudo-header")
	}
	f.SetName("content-type")
	if f.IsPseudo() {
		t.Fatal("content-type must not be a pseudo-header")
	}
}

func TestFieldReleaseResets(t *testing.T) {
	f := AcquireField()
	f.SetName("x")
	f.SetValue("y")
	ReleaseField(f)

	g := AcquireField()
	defer ReleaseField(g)
	if len(g.NameBytes()) != 0 || len(g.ValueBytes()) != 0 {
		t.Fatal("expected a freshly reset field from the pool")
	}
}

func TestFieldListSinkAndSource(t *testing.T) {
	var list FieldList
	list.AddField([]byte("a"), []byte("1"))
	list.AddField([]byte("b"), []byte("2"))

	if list.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", list.Len())
	}

	var got [][2]string
	err := list.ForEachField(func(name, value []byte) error {
		got = append(got, [2]string{string(name), string(value)})
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachField error: %v", err)
	}
	if len(got) != 2 || got[0][0] != "a" || got[1][0] != "b" {
		t.Fatalf("ForEachField order wrong: %+v", got)
	}
}
