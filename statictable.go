package hpack

// The HPACK static table, RFC 7541 Appendix A: 61 frozen entries,
// addressed 1..=61. Index 0 of this slice corresponds to combined
// HPACK index 1.
//
// https://httpwg.org/specs/rfc7541.html#static.table

var staticTable = [61]Field{
	{name: []byte(":authority")},
	{name: []byte(":method"), value: []byte("GET")},
	{name: []byte(":method"), value: []byte("POST")},
	{name: []byte(":path"), value: []byte("/")},
	{name: []byte(":path"), value: []byte("/index.html")},
	{name: []byte(":scheme"), value: []byte("http")},
	{name: []byte(":scheme"), value: []byte("https")},
	{name: []byte(":status"), value: []byte("200")},
	{name: []byte(":status"), value: []byte("204")},
	{name: []byte(":status"), value: []byte("206")},
	{name: []byte(":status"), value: []byte("304")},
	{name: []byte(":status"), value: []byte("400")},
	{name: []byte(":status"), value: []byte("404")},
	{name: []byte(":status"), value: []byte("500")},
	{name: []byte("accept-charset")},
	{name: []byte("accept-encoding"), value: []byte("gzip, deflate")},
	{name: []byte("accept-language")},
	{name: []byte("accept-ranges")},
	{name: []byte("accept")},
	{name: []byte("access-control-allow-origin")},
	{name: []byte("age")},
	{name: []byte("allow")},
	{name: []byte("authorization")},
	{name: []byte("cache-control")},
	{name: []byte("content-disposition")},
	{name: []byte("content-encoding")},
	{name: []byte("content-language")},
	{name: []byte("content-length")},
	{name: []byte("content-location")},
	{name: []byte("content-range")},
	{name: []byte("content-type")},
	{name: []byte("cookie")},
	{name: []byte("date")},
	{name: []byte("etag")},
	{name: []byte("expect")},
	{name: []byte("expires")},
	{name: []byte("from")},
	{name: []byte("host")},
	{name: []byte("if-match")},
	{name: []byte("if-modified-since")},
	{name: []byte("if-none-match")},
	{name: []byte("if-range")},
	{name: []byte("if-unmodified-since")},
	{name: []byte("last-modified")},
	{name: []byte("link")},
	{name: []byte("location")},
	{name: []byte("max-forwards")},
	{name: []byte("proxy-authenticate")},
	{name: []byte("proxy-authorization")},
	{name: []byte("range")},
	{name: []byte("referer")},
	{name: []byte("refresh")},
	{name: []byte("retry-after")},
	{name: []byte("server")},
	{name: []byte("set-cookie")},
	{name: []byte("strict-transport-security")},
	{name: []byte("transfer-encoding")},
	{name: []byte("user-agent")},
	{name: []byte("vary")},
	{name: []byte("via")},
	{name: []byte("www-authenticate")},
}

const staticTableSize = len(staticTable)

// staticLookup returns the static-table entry for combined HPACK
// index i (1-based), and whether it was in range.
func staticLookup(i uint64) (Field, bool) {
	if i < 1 || i > uint64(staticTableSize) {
		return Field{}, false
	}
	return staticTable[i-1], true
}

// staticLookupField scans the static table for name (and, if it
// matches, value), returning the smallest matching combined index and
// whether the match was exact.
func staticLookupField(name, value []byte) (index uint64, exact bool) {
	for i, f := range staticTable {
		if !fieldNameEqual(f.name, name) {
			continue
		}
		if index == 0 {
			index = uint64(i + 1)
		}
		if bytesEqual(f.value, value) {
			return uint64(i + 1), true
		}
	}
	return index, false
}
