package hpack

// The header-block driver (spec component C5): EncodeBlock/DecodeBlock
// turn a stream of representations into (or out of) a single
// compressed header block, maintaining the dynamic table across
// calls. Grounded on hpack_decode_header_block / hpack_encode_header_block
// in Apache Traffic Server's proxy/http2/HPACK.cc.

// Codec pairs a DynamicTable with the block-level encode/decode
// operations a connection uses it through. One Codec exists per
// direction per connection (spec section 5): a connection needs one
// for the fields it decodes and one for the fields it encodes, since
// the two dynamic tables are independent.
type Codec struct {
	Table *DynamicTable

	// MaxHeaderListSize bounds the uncompressed size of a decoded
	// header list (sum of Field.Size() over all fields), mirroring
	// HTTP/2 SETTINGS_MAX_HEADER_LIST_SIZE. Zero means unbounded.
	MaxHeaderListSize uint32

	// PeerMaxTableSize is the upper bound the peer has already agreed
	// to out of band (SETTINGS_HEADER_TABLE_SIZE). A decoded
	// TABLESIZE_UPDATE requesting anything larger is a CompressionError
	// (RFC 7541 6.3) rather than silently clamped. Zero means no bound
	// is enforced: any decoded size update is applied to the table.
	PeerMaxTableSize uint32
}

// NewCodec creates a Codec with a fresh dynamic table of the given
// maximum size.
func NewCodec(maxTableSize uint32) *Codec {
	return &Codec{Table: NewDynamicTable(maxTableSize)}
}

// EncodeBlock reads every field from src via ForEachField and appends
// their compressed representations to dst, applying mode to each
// literal that cannot be served by an existing table entry. It
// returns the extended slice.
//
// A dynamic table size update is emitted first if pendingSizeUpdate is
// non-negative (the host is expected to call this once per size
// change, immediately before the block that should carry it — RFC
// 7541 6.3).
func (c *Codec) EncodeBlock(dst []byte, src HeaderSource, mode IndexingMode, pendingSizeUpdate int64) ([]byte, error) {
	if pendingSizeUpdate >= 0 {
		newSize := uint64(pendingSizeUpdate)
		if err := c.Table.SetMaximumSize(uint32(newSize)); err != nil {
			return dst, err
		}
		dst = encodeTableSizeUpdate(dst, newSize)
	}

	err := src.ForEachField(func(name, value []byte) error {
		dst = c.encodeOne(dst, name, value, mode)
		return nil
	})
	if err != nil {
		return dst, err
	}
	return dst, nil
}

func (c *Codec) encodeOne(dst []byte, name, value []byte, mode IndexingMode) []byte {
	lookup := c.Table.LookupByField(name, value)
	effective := chooseIndexingMode(name, value, mode)

	switch lookup.Kind {
	case LookupExact:
		return encodeIndexedField(dst, lookup.Index)

	case LookupNameOnly:
		dst = encodeLiteralWithIndexedName(dst, lookup.Index, value, effective)
	default:
		dst = encodeLiteralWithNewName(dst, name, value, effective)
	}

	if effective == IndexIncremental {
		// The dynamic table indexes fields by their on-wire (lowercase)
		// name; insert the same bytes the decoder's peer will see.
		_ = c.Table.Insert(lowerASCII(name), value)
	}
	return dst
}

// DecodeBlock parses one complete compressed header block from src,
// delivering each decoded field to dst in order.
//
// On success it returns len(src), nil. On an HTTP-level semantic
// violation (an uppercase literal name) that doesn't invalidate the
// compression itself, it returns a negative byte count whose absolute
// value is the number of bytes actually consumed, with a nil error —
// mirroring hpack_decode_header_block's negated-length soft-failure
// contract, so the caller can still account for the bytes while
// treating the stream as carrying a malformed header list. Any other
// failure is a connection-fatal CompressionError or a stream-fatal
// SizeExceeded, returned as a non-nil error.
func (c *Codec) DecodeBlock(dst HeaderSink, src []byte) (n int, err error) {
	pos := 0
	fieldsSeen := 0
	var totalSize uint32
	softViolation := false

	for pos < len(src) {
		df, consumed, violation, derr := decodeField(src[pos:], c.Table)
		if derr != nil {
			return 0, derr
		}

		if df.repr == reprTableSizeUpdate {
			if fieldsSeen > 0 {
				return 0, newErr(ErrCodeCompressionError, "table size update after a field in the block")
			}
			if c.PeerMaxTableSize != 0 && df.newSize > uint64(c.PeerMaxTableSize) {
				return 0, newErr(ErrCodeCompressionError, "table size update %d exceeds peer max %d", df.newSize, c.PeerMaxTableSize)
			}
			if err := c.Table.SetMaximumSize(uint32(df.newSize)); err != nil {
				return 0, newErr(ErrCodeCompressionError, "table size update rejected: %v", err)
			}
			pos += consumed
			continue
		}

		fieldsSeen++

		if violation {
			softViolation = true
		}

		if df.index {
			if err := c.Table.Insert(df.name, df.value); err != nil {
				return 0, newErr(ErrCodeCompressionError, "dynamic table insert failed: %v", err)
			}
		}

		totalSize += uint32(len(df.name) + len(df.value) + hpackEntryOverhead)
		if c.MaxHeaderListSize != 0 && totalSize > c.MaxHeaderListSize {
			return 0, newErr(ErrCodeSizeExceeded, "decoded header list exceeds %d bytes", c.MaxHeaderListSize)
		}

		dst.AddField(df.name, df.value)
		pos += consumed
	}

	if softViolation {
		return -pos, nil
	}
	return pos, nil
}
