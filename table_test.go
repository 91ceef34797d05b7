package hpack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDynamicTableInsertAndLookup(t *testing.T) {
	table := NewDynamicTable(256)
	require.True(t, table.IsEmpty())

	require.NoError(t, table.Insert([]byte("custom-header"), []byte("custom-value")))
	require.Equal(t, 1, table.Count())
	require.EqualValues(t, len("custom-header")+len("custom-value")+hpackEntryOverhead, table.Size())

	name, value, err := table.LookupByIndex(62)
	require.NoError(t, err)
	require.Equal(t, "custom-header", string(name))
	require.Equal(t, "custom-value", string(value))

	res := table.LookupByField([]byte("custom-header"), []byte("custom-value"))
	require.Equal(t, LookupExact, res.Kind)
	require.EqualValues(t, 62, res.Index)
}

func TestDynamicTableMostRecentFirst(t *testing.T) {
	table := NewDynamicTable(4096)
	require.NoError(t, table.Insert([]byte("a"), []byte("1")))
	require.NoError(t, table.Insert([]byte("b"), []byte("2")))

	// "b" was inserted last, so it addresses as the smaller dynamic
	// index (62), per RFC 7541 2.3.2.
	name, value, err := table.LookupByIndex(62)
	require.NoError(t, err)
	require.Equal(t, "b", string(name))
	require.Equal(t, "2", string(value))

	name, value, err = table.LookupByIndex(63)
	require.NoError(t, err)
	require.Equal(t, "a", string(name))
	require.Equal(t, "1", string(value))
}

func TestDynamicTableEvictsOldestOnPressure(t *testing.T) {
	// Each entry costs len(name)+len(value)+32. Pick a tiny table that
	// can hold exactly one such entry: sized for the larger "k2"/"v2".
	entrySize := uint32(len("k2") + len("v2") + hpackEntryOverhead)
	table := NewDynamicTable(entrySize)

	require.NoError(t, table.Insert([]byte("k"), []byte("v")))
	require.Equal(t, 1, table.Count())

	require.NoError(t, table.Insert([]byte("k2"), []byte("v2")))
	// The new entry is bigger, but still fits alone; the old one must
	// have been evicted to make room.
	require.Equal(t, 1, table.Count())
	_, _, err := table.LookupByIndex(63)
	require.Error(t, err)
}

func TestDynamicTableOversizedEntryClearsTable(t *testing.T) {
	table := NewDynamicTable(64)
	require.NoError(t, table.Insert([]byte("a"), []byte("b")))
	require.Equal(t, 1, table.Count())

	huge := make([]byte, 128)
	require.NoError(t, table.Insert([]byte("big"), huge))
	require.True(t, table.IsEmpty())
	require.EqualValues(t, 0, table.Size())
}

func TestDynamicTableRefBlocksEviction(t *testing.T) {
	// Room for "k2"/"v2" alone, so inserting it must evict "k"/"v".
	entrySize := uint32(len("k2") + len("v2") + hpackEntryOverhead)
	table := NewDynamicTable(entrySize)
	require.NoError(t, table.Insert([]byte("k"), []byte("v")))

	table.Ref(0)
	err := table.Insert([]byte("k2"), []byte("v2"))
	require.Error(t, err)
	require.True(t, table.Count() == 1)

	table.Unref(0)
	require.NoError(t, table.Insert([]byte("k2"), []byte("v2")))
}

func TestDynamicTableGrow(t *testing.T) {
	table := NewDynamicTable(64)
	require.NoError(t, table.Insert([]byte("name"), []byte("value")))

	require.NoError(t, table.SetMaximumSize(4096))
	require.EqualValues(t, 4096, table.MaximumSize())

	name, value, err := table.LookupByIndex(62)
	require.NoError(t, err)
	require.Equal(t, "name", string(name))
	require.Equal(t, "value", string(value))

	// Growth must not disturb ordering or contents, and must allow
	// further inserts into the larger capacity.
	require.NoError(t, table.Insert([]byte("name2"), []byte("value2")))
	require.Equal(t, 2, table.Count())
}

func TestDynamicTableShrinkEvicts(t *testing.T) {
	table := NewDynamicTable(4096)
	require.NoError(t, table.Insert([]byte("a"), []byte("1")))
	require.NoError(t, table.Insert([]byte("b"), []byte("2")))

	require.NoError(t, table.SetMaximumSize(0))
	require.True(t, table.IsEmpty())
}

func TestDynamicTableShrinkWithoutEviction(t *testing.T) {
	// Shrinking to a size that still comfortably holds the live entries
	// must succeed without evicting anything.
	table := NewDynamicTable(4096)
	require.NoError(t, table.Insert([]byte("a"), []byte("1")))

	entrySize := uint32(len("a") + len("1") + hpackEntryOverhead)
	require.NoError(t, table.SetMaximumSize(entrySize+100))
	require.Equal(t, 1, table.Count())
	require.EqualValues(t, entrySize+100, table.MaximumSize())
}

func TestDynamicTableZeroSizeRejectsAllInserts(t *testing.T) {
	table := NewDynamicTable(0)
	require.NoError(t, table.Insert([]byte("a"), []byte("b")))
	require.True(t, table.IsEmpty())

	// Static addressing must still work against a zero-size table.
	name, value, err := table.LookupByIndex(1)
	require.NoError(t, err)
	require.Equal(t, ":authority", string(name))
	require.Empty(t, value)
}
