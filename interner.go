package hpack

// WellKnownInterner builds an Interner (see table.go) that canonicalizes
// header names onto the exact byte slices used by the HPACK static
// table, so a host that inserts, say, "content-type" into the dynamic
// table many times over a connection's lifetime shares one backing
// array instead of allocating a new one per insert.
//
// Grounded on ATS's insert_entry, which runs every inserted name
// through hdrtoken_tokenize to intern it against the global well-known
// MIME string table before storing.
func WellKnownInterner() Interner {
	known := make(map[string][]byte, staticTableSize)
	for _, f := range staticTable {
		known[string(f.name)] = f.name
	}
	return func(name []byte) []byte {
		if canon, ok := known[string(name)]; ok {
			return canon
		}
		return nil
	}
}
