package hpack

import "bytes"

// Field representations, RFC 7541 6: each header field in a block is
// tagged by the high bits of its first octet. Grounded on Apache
// Traffic Server's hpack_parse_field_type and the encode_*/decode_*
// family in proxy/http2/HPACK.cc.

type fieldRepr uint8

const (
	reprIndexed fieldRepr = iota
	reprLiteralIncremental
	reprLiteralWithoutIndexing
	reprLiteralNeverIndexed
	reprTableSizeUpdate
)

const (
	maskIndexed             = 0x80
	maskLiteralIncremental  = 0x40
	maskTableSizeUpdate     = 0x20
	maskLiteralNeverIndexed = 0x10
)

func parseFieldRepr(b byte) fieldRepr {
	switch {
	case b&maskIndexed != 0:
		return reprIndexed
	case b&maskLiteralIncremental != 0:
		return reprLiteralIncremental
	case b&maskTableSizeUpdate != 0:
		return reprTableSizeUpdate
	case b&maskLiteralNeverIndexed != 0:
		return reprLiteralNeverIndexed
	default:
		return reprLiteralWithoutIndexing
	}
}

// IndexingMode controls whether an encoded literal field is also
// inserted into the dynamic table, and whether intermediaries are
// forbidden from indexing it themselves.
type IndexingMode uint8

const (
	// IndexIncremental inserts the field into the dynamic table.
	IndexIncremental IndexingMode = iota
	// IndexNone encodes a plain literal, not inserted anywhere.
	IndexNone
	// IndexNever marks the field as never to be indexed by any
	// intermediary, even across re-encodes (RFC 7541 7.1.3) — used for
	// genuinely sensitive values.
	IndexNever
)

// cookieNeverIndexThreshold is Apache Traffic Server's encoder policy
// (HPACK.cc hpack_encode_header_field): short cookie values are
// common and not very compressible as literals, so they're sent
// never-indexed rather than polluting the dynamic table.
const cookieNeverIndexThreshold = 20

var (
	fieldNameCookie        = []byte("cookie")
	fieldNameAuthorization = []byte("authorization")
)

// chooseIndexingMode implements the encoder's never-indexed field
// policy: "authorization" is always sent never-indexed, and "cookie"
// is sent never-indexed only below the threshold length, matching the
// rationale that short cookies are usually per-request and not worth
// indexing while still being sensitive enough to protect from
// compression-oracle attacks (RFC 7541 7.1).
func chooseIndexingMode(name, value []byte, requested IndexingMode) IndexingMode {
	if requested == IndexNever {
		return IndexNever
	}
	if bytes.EqualFold(name, fieldNameAuthorization) {
		return IndexNever
	}
	if bytes.EqualFold(name, fieldNameCookie) && len(value) < cookieNeverIndexThreshold {
		return IndexNever
	}
	return requested
}

// encodeIndexedField appends the Indexed Header Field representation
// for combined index idx (RFC 7541 6.1).
func encodeIndexedField(dst []byte, idx uint64) []byte {
	pos := len(dst)
	dst = appendInt(dst, 7, idx)
	dst[pos] |= maskIndexed
	return dst
}

// encodeLiteralWithIndexedName appends a literal field representation
// that references nameIdx for the name and writes value verbatim (RFC
// 7541 6.2.1/6.2.2/6.2.3, name half).
func encodeLiteralWithIndexedName(dst []byte, nameIdx uint64, value []byte, mode IndexingMode) []byte {
	n, mask := literalPrefixBits(mode)
	pos := len(dst)
	dst = appendInt(dst, n, nameIdx)
	dst[pos] |= mask
	dst = appendString(dst, 7, value)
	return dst
}

// encodeLiteralWithNewName appends a literal field representation
// that carries both a new name and value (RFC 7541 6.2.1/6.2.2/6.2.3,
// new-name case). The name is lowercased first: ATS's encoder
// (encode_literal_header_field_with_new_name) does this via
// ink_tolower before writing, since HPACK requires field names on the
// wire to be lowercase.
func encodeLiteralWithNewName(dst []byte, name, value []byte, mode IndexingMode) []byte {
	n, mask := literalPrefixBits(mode)
	pos := len(dst)
	dst = appendInt(dst, n, 0)
	dst[pos] |= mask

	lower := lowerASCII(name)
	dst = appendString(dst, 7, lower)
	dst = appendString(dst, 7, value)
	return dst
}

func literalPrefixBits(mode IndexingMode) (n uint8, mask byte) {
	switch mode {
	case IndexIncremental:
		return 6, maskLiteralIncremental
	case IndexNever:
		return 4, maskLiteralNeverIndexed
	default:
		return 4, 0
	}
}

// encodeTableSizeUpdate appends a Dynamic Table Size Update
// representation (RFC 7541 6.3).
func encodeTableSizeUpdate(dst []byte, newSize uint64) []byte {
	pos := len(dst)
	dst = appendInt(dst, 5, newSize)
	dst[pos] |= maskTableSizeUpdate
	return dst
}

func lowerASCII(b []byte) []byte {
	for _, c := range b {
		if c >= 'A' && c <= 'Z' {
			out := make([]byte, len(b))
			for i, c2 := range b {
				if c2 >= 'A' && c2 <= 'Z' {
					c2 += 'a' - 'A'
				}
				out[i] = c2
			}
			return out
		}
	}
	return b
}

func hasUppercase(b []byte) bool {
	for _, c := range b {
		if c >= 'A' && c <= 'Z' {
			return true
		}
	}
	return false
}

// decodedField is one parsed representation: for reprTableSizeUpdate,
// only newSize is populated.
type decodedField struct {
	repr     fieldRepr
	name     []byte
	value    []byte
	index    bool // should be inserted into the dynamic table
	newSize  uint64
}

// decodeField parses exactly one field representation starting at
// src[0], resolving indexed names/values against table. consumed is
// the number of bytes read on success.
//
// httpViolation is set (with err == nil) when the representation
// parsed successfully but violated an HTTP-level constraint that
// doesn't invalidate the compressed representation itself — currently,
// a literal name containing uppercase ASCII (RFC 7541 requires
// lowercase on the wire; ATS's decode_literal_header_field detects
// this via is_upalpha and keeps parsing, folding the violation into
// the caller's overall block result rather than aborting).
func decodeField(src []byte, table *DynamicTable) (df decodedField, consumed int, httpViolation bool, err error) {
	if len(src) == 0 {
		return decodedField{}, 0, false, newErr(ErrCodeCompressionError, "empty field representation")
	}

	df.repr = parseFieldRepr(src[0])

	switch df.repr {
	case reprIndexed:
		idx, n, derr := decodeInt(src, 7)
		if derr != nil {
			return decodedField{}, 0, false, derr
		}
		if idx == 0 {
			return decodedField{}, 0, false, newErr(ErrCodeCompressionError, "indexed field with index 0")
		}
		name, value, lerr := table.LookupByIndex(idx)
		if lerr != nil {
			return decodedField{}, 0, false, lerr
		}
		df.name, df.value = name, value
		return df, n, false, nil

	case reprTableSizeUpdate:
		size, n, derr := decodeInt(src, 5)
		if derr != nil {
			return decodedField{}, 0, false, derr
		}
		df.newSize = size
		return df, n, false, nil

	default:
		return decodeLiteral(src, df.repr, table)
	}
}

func decodeLiteral(src []byte, repr fieldRepr, table *DynamicTable) (df decodedField, consumed int, httpViolation bool, err error) {
	var prefixBits uint8
	switch repr {
	case reprLiteralIncremental:
		prefixBits = 6
	default:
		prefixBits = 4
	}

	idx, n, derr := decodeInt(src, prefixBits)
	if derr != nil {
		return decodedField{}, 0, false, derr
	}
	pos := n

	var name []byte
	if idx == 0 {
		decodedName, nn, serr := decodeString(nil, src[pos:], 7)
		if serr != nil {
			return decodedField{}, 0, false, serr
		}
		pos += nn
		if hasUppercase(decodedName) {
			httpViolation = true
		}
		name = decodedName
	} else {
		n2, _, lerr := table.LookupByIndex(idx)
		if lerr != nil {
			return decodedField{}, 0, false, lerr
		}
		name = append([]byte(nil), n2...)
	}

	value, vn, serr := decodeString(nil, src[pos:], 7)
	if serr != nil {
		return decodedField{}, 0, false, serr
	}
	pos += vn

	df.repr = repr
	df.name = name
	df.value = value
	df.index = repr == reprLiteralIncremental

	return df, pos, httpViolation, nil
}
