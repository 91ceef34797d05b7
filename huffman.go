package hpack

// The canonical Huffman code table for the HPACK header-compression
// alphabet, RFC 7541 Appendix B: 256 octet values plus the EOS symbol
// at index 256. EOS only ever appears as trailing padding; any
// decoded occurrence of it is a protocol violation.
//
// https://httpwg.org/specs/rfc7541.html#huffman.code

type huffmanSym struct {
	code uint32
	bits uint8
}

const huffmanEOS = 256

var huffmanTable = [257]huffmanSym{
	{code: 0x1ff8, bits: 13}, {code: 0x7fffd8, bits: 23}, {code: 0xfffffe2, bits: 28}, {code: 0xfffffe3, bits: 28},
	{code: 0xfffffe4, bits: 28}, {code: 0xfffffe5, bits: 28}, {code: 0xfffffe6, bits: 28}, {code: 0xfffffe7, bits: 28},
	{code: 0xfffffe8, bits: 28}, {code: 0xffffea, bits: 24}, {code: 0x3ffffffc, bits: 30}, {code: 0xfffffe9, bits: 28},
	{code: 0xfffffea, bits: 28}, {code: 0x3ffffffd, bits: 30}, {code: 0xfffffeb, bits: 28}, {code: 0xfffffec, bits: 28},
	{code: 0xfffffed, bits: 28}, {code: 0xfffffee, bits: 28}, {code: 0xfffffef, bits: 28}, {code: 0xffffff0, bits: 28},
	{code: 0xffffff1, bits: 28}, {code: 0xffffff2, bits: 28}, {code: 0x3ffffffe, bits: 30}, {code: 0xffffff3, bits: 28},
	{code: 0xffffff4, bits: 28}, {code: 0xffffff5, bits: 28}, {code: 0xffffff6, bits: 28}, {code: 0xffffff7, bits: 28},
	{code: 0xffffff8, bits: 28}, {code: 0xffffff9, bits: 28}, {code: 0xffffffa, bits: 28}, {code: 0xffffffb, bits: 28},
	{code: 0x14, bits: 6}, {code: 0x3f8, bits: 10}, {code: 0x3f9, bits: 10}, {code: 0xffa, bits: 12},
	{code: 0x1ff9, bits: 13}, {code: 0x15, bits: 6}, {code: 0xf8, bits: 8}, {code: 0x7fa, bits: 11},
	{code: 0x3fa, bits: 10}, {code: 0x3fb, bits: 10}, {code: 0xf9, bits: 8}, {code: 0x7fb, bits: 11},
	{code: 0xfa, bits: 8}, {code: 0x16, bits: 6}, {code: 0x17, bits: 6}, {code: 0x18, bits: 6},
	{code: 0x0, bits: 5}, {code: 0x1, bits: 5}, {code: 0x2, bits: 5}, {code: 0x19, bits: 6},
	{code: 0x1a, bits: 6}, {code: 0x1b, bits: 6}, {code: 0x1c, bits: 6}, {code: 0x1d, bits: 6},
	{code: 0x1e, bits: 6}, {code: 0x1f, bits: 6}, {code: 0x5c, bits: 7}, {code: 0xfb, bits: 8},
	{code: 0x7ffc, bits: 15}, {code: 0x20, bits: 6}, {code: 0xffb, bits: 12}, {code: 0x3fc, bits: 10},
	{code: 0x1ffa, bits: 13}, {code: 0x21, bits: 6}, {code: 0x5d, bits: 7}, {code: 0x5e, bits: 7},
	{code: 0x5f, bits: 7}, {code: 0x60, bits: 7}, {code: 0x61, bits: 7}, {code: 0x62, bits: 7},
	{code: 0x63, bits: 7}, {code: 0x64, bits: 7}, {code: 0x65, bits: 7}, {code: 0x66, bits: 7},
	{code: 0x67, bits: 7}, {code: 0x68, bits: 7}, {code: 0x69, bits: 7}, {code: 0x6a, bits: 7},
	{code: 0x6b, bits: 7}, {code: 0x6c, bits: 7}, {code: 0x6d, bits: 7}, {code: 0x6e, bits: 7},
	{code: 0x6f, bits: 7}, {code: 0x70, bits: 7}, {code: 0x71, bits: 7}, {code: 0x72, bits: 7},
	{code: 0xfc, bits: 8}, {code: 0x73, bits: 7}, {code: 0xfd, bits: 8}, {code: 0x1ffb, bits: 13},
	{code: 0x7fff0, bits: 19}, {code: 0x1ffc, bits: 13}, {code: 0x3ffc, bits: 14}, {code: 0x22, bits: 6},
	{code: 0x7ffd, bits: 15}, {code: 0x3, bits: 5}, {code: 0x23, bits: 6}, {code: 0x4, bits: 5},
	{code: 0x24, bits: 6}, {code: 0x5, bits: 5}, {code: 0x25, bits: 6}, {code: 0x26, bits: 6},
	{code: 0x27, bits: 6}, {code: 0x6, bits: 5}, {code: 0x74, bits: 7}, {code: 0x75, bits: 7},
	{code: 0x28, bits: 6}, {code: 0x29, bits: 6}, {code: 0x2a, bits: 6}, {code: 0x7, bits: 5},
	{code: 0x2b, bits: 6}, {code: 0x76, bits: 7}, {code: 0x2c, bits: 6}, {code: 0x8, bits: 5},
	{code: 0x9, bits: 5}, {code: 0x2d, bits: 6}, {code: 0x77, bits: 7}, {code: 0x78, bits: 7},
	{code: 0x79, bits: 7}, {code: 0x7a, bits: 7}, {code: 0x7b, bits: 7}, {code: 0x7ffe, bits: 15},
	{code: 0x7fc, bits: 11}, {code: 0x3ffd, bits: 14}, {code: 0x1ffd, bits: 13}, {code: 0xffffffc, bits: 28},
	{code: 0xfffe6, bits: 20}, {code: 0x3fffd2, bits: 22}, {code: 0xfffe7, bits: 20}, {code: 0xfffe8, bits: 20},
	{code: 0x3fffd3, bits: 22}, {code: 0x3fffd4, bits: 22}, {code: 0x3fffd5, bits: 22}, {code: 0x7fffd9, bits: 23},
	{code: 0x3fffd6, bits: 22}, {code: 0x7fffda, bits: 23}, {code: 0x7fffdb, bits: 23}, {code: 0x7fffdc, bits: 23},
	{code: 0x7fffdd, bits: 23}, {code: 0x7fffde, bits: 23}, {code: 0xffffeb, bits: 24}, {code: 0x7fffdf, bits: 23},
	{code: 0xffffec, bits: 24}, {code: 0xffffed, bits: 24}, {code: 0x3fffd7, bits: 22}, {code: 0x7fffe0, bits: 23},
	{code: 0xffffee, bits: 24}, {code: 0x7fffe1, bits: 23}, {code: 0x7fffe2, bits: 23}, {code: 0x7fffe3, bits: 23},
	{code: 0x7fffe4, bits: 23}, {code: 0x1fffdc, bits: 21}, {code: 0x3fffd8, bits: 22}, {code: 0x7fffe5, bits: 23},
	{code: 0x3fffd9, bits: 22}, {code: 0x7fffe6, bits: 23}, {code: 0x7fffe7, bits: 23}, {code: 0xffffef, bits: 24},
	{code: 0x3fffda, bits: 22}, {code: 0x1fffdd, bits: 21}, {code: 0xfffe9, bits: 20}, {code: 0x3fffdb, bits: 22},
	{code: 0x3fffdc, bits: 22}, {code: 0x7fffe8, bits: 23}, {code: 0x7fffe9, bits: 23}, {code: 0x1fffde, bits: 21},
	{code: 0x7fffea, bits: 23}, {code: 0x3fffdd, bits: 22}, {code: 0x3fffde, bits: 22}, {code: 0xfffff0, bits: 24},
	{code: 0x1fffdf, bits: 21}, {code: 0x3fffdf, bits: 22}, {code: 0x7fffeb, bits: 23}, {code: 0x7fffec, bits: 23},
	{code: 0x1fffe0, bits: 21}, {code: 0x1fffe1, bits: 21}, {code: 0x3fffe0, bits: 22}, {code: 0x1fffe2, bits: 21},
	{code: 0x7fffed, bits: 23}, {code: 0x3fffe1, bits: 22}, {code: 0x7fffee, bits: 23}, {code: 0x7fffef, bits: 23},
	{code: 0xfffea, bits: 20}, {code: 0x3fffe2, bits: 22}, {code: 0x3fffe3, bits: 22}, {code: 0x3fffe4, bits: 22},
	{code: 0x7ffff0, bits: 23}, {code: 0x3fffe5, bits: 22}, {code: 0x3fffe6, bits: 22}, {code: 0x7ffff1, bits: 23},
	{code: 0x3ffffe0, bits: 26}, {code: 0x3ffffe1, bits: 26}, {code: 0xfffeb, bits: 20}, {code: 0x7fff1, bits: 19},
	{code: 0x3fffe7, bits: 22}, {code: 0x7ffff2, bits: 23}, {code: 0x3fffe8, bits: 22}, {code: 0x1ffffec, bits: 25},
	{code: 0x3ffffe2, bits: 26}, {code: 0x3ffffe3, bits: 26}, {code: 0x3ffffe4, bits: 26}, {code: 0x7ffffde, bits: 27},
	{code: 0x7ffffdf, bits: 27}, {code: 0x3ffffe5, bits: 26}, {code: 0xfffff1, bits: 24}, {code: 0x1ffffed, bits: 25},
	{code: 0x7fff2, bits: 19}, {code: 0x1fffe3, bits: 21}, {code: 0x3ffffe6, bits: 26}, {code: 0x7ffffe0, bits: 27},
	{code: 0x7ffffe1, bits: 27}, {code: 0x3ffffe7, bits: 26}, {code: 0x7ffffe2, bits: 27}, {code: 0xfffff2, bits: 24},
	{code: 0x1fffe4, bits: 21}, {code: 0x1fffe5, bits: 21}, {code: 0x3ffffe8, bits: 26}, {code: 0x3ffffe9, bits: 26},
	{code: 0xffffffd, bits: 28}, {code: 0x7ffffe3, bits: 27}, {code: 0x7ffffe4, bits: 27}, {code: 0x7ffffe5, bits: 27},
	{code: 0xfffec, bits: 20}, {code: 0xfffff3, bits: 24}, {code: 0xfffed, bits: 20}, {code: 0x1fffe6, bits: 21},
	{code: 0x3fffe9, bits: 22}, {code: 0x1fffe7, bits: 21}, {code: 0x1fffe8, bits: 21}, {code: 0x7ffff3, bits: 23},
	{code: 0x3fffea, bits: 22}, {code: 0x3fffeb, bits: 22}, {code: 0x1ffffee, bits: 25}, {code: 0x1ffffef, bits: 25},
	{code: 0xfffff4, bits: 24}, {code: 0xfffff5, bits: 24}, {code: 0x3ffffea, bits: 26}, {code: 0x7ffff4, bits: 23},
	{code: 0x3ffffeb, bits: 26}, {code: 0x7ffffe6, bits: 27}, {code: 0x3ffffec, bits: 26}, {code: 0x3ffffed, bits: 26},
	{code: 0x7ffffe7, bits: 27}, {code: 0x7ffffe8, bits: 27}, {code: 0x7ffffe9, bits: 27}, {code: 0x7ffffea, bits: 27},
	{code: 0x7ffffeb, bits: 27}, {code: 0xffffffe, bits: 28}, {code: 0x7ffffec, bits: 27}, {code: 0x7ffffed, bits: 27},
	{code: 0x7ffffee, bits: 27}, {code: 0x7ffffef, bits: 27}, {code: 0x7fffff0, bits: 27}, {code: 0x3ffffee, bits: 26},
	{code: 0x3fffffff, bits: 30},
}

// huffmanNode is one node of the canonical decode trie, built once
// from huffmanTable at package init time.
type huffmanNode struct {
	left, right *huffmanNode
	sym         int32
	leaf        bool
}

var huffmanRoot = buildHuffmanTree()

func buildHuffmanTree() *huffmanNode {
	root := &huffmanNode{sym: -1}
	for sym, e := range huffmanTable {
		n := root
		for b := int(e.bits) - 1; b >= 0; b-- {
			if e.code&(1<<uint(b)) != 0 {
				if n.right == nil {
					n.right = &huffmanNode{sym: -1}
				}
				n = n.right
			} else {
				if n.left == nil {
					n.left = &huffmanNode{sym: -1}
				}
				n = n.left
			}
		}
		n.sym = int32(sym)
		n.leaf = true
	}
	return root
}

// huffmanEncodedLen returns the number of bits huffmanEncode would
// emit for src, before padding to a byte boundary.
func huffmanEncodedLen(src []byte) int {
	n := 0
	for _, c := range src {
		n += int(huffmanTable[c].bits)
	}
	return n
}

// huffmanEncode appends the Huffman encoding of src to dst and
// returns the extended slice. The final byte, if any bits short of a
// full byte, is padded with the high-order bits of the EOS code (all
// ones), per RFC 7541 5.2.
func huffmanEncode(dst, src []byte) []byte {
	var bitBuf uint64
	var nBits uint

	for _, c := range src {
		e := huffmanTable[c]
		bitBuf = (bitBuf << e.bits) | uint64(e.code)
		nBits += uint(e.bits)

		for nBits >= 8 {
			nBits -= 8
			dst = append(dst, byte(bitBuf>>nBits))
		}
	}

	if nBits > 0 {
		// Pad with the high bits of EOS (all ones) to fill the byte.
		pad := 8 - nBits
		b := byte(bitBuf<<pad) | (0xff >> nBits)
		dst = append(dst, b)
	}

	return dst
}

// huffmanDecode appends the Huffman decoding of src to dst and
// returns the extended slice, enforcing RFC 7541 5.2's padding rules:
// a decoded EOS symbol is always an error, and trailing padding must
// be fewer than 8 bits and consist entirely of one-bits.
func huffmanDecode(dst, src []byte) ([]byte, error) {
	n := huffmanRoot
	var bitsSincePath uint
	var sawZeroSincePath bool

	for _, b := range src {
		for shift := 7; shift >= 0; shift-- {
			if b&(1<<uint(shift)) != 0 {
				n = n.right
			} else {
				n = n.left
				sawZeroSincePath = true
			}
			if n == nil {
				return nil, newErr(ErrCodeCompressionError, "invalid huffman code")
			}
			bitsSincePath++

			if n.leaf {
				if n.sym == huffmanEOS {
					return nil, newErr(ErrCodeCompressionError, "huffman stream contains EOS symbol")
				}
				dst = append(dst, byte(n.sym))
				n = huffmanRoot
				bitsSincePath = 0
				sawZeroSincePath = false
			}
		}
	}

	if bitsSincePath > 7 {
		return nil, newErr(ErrCodeCompressionError, "huffman stream ends mid-symbol")
	}
	if bitsSincePath > 0 && sawZeroSincePath {
		return nil, newErr(ErrCodeCompressionError, "huffman padding is not all one-bits")
	}

	return dst, nil
}

// HuffmanEncode writes the Huffman encoding of src into dst[:len(dst)]
// (not growing it) and returns the number of bytes written. It fails
// with ErrBufferTooSmall rather than writing past dst's existing
// capacity, per the C1 encoder contract in RFC 7541 5.2.
func HuffmanEncode(dst, src []byte) (int, error) {
	need := huffmanEncodedLenRounded(src)
	if need > len(dst) {
		return 0, newErr(ErrCodeBufferTooSmall, "need %d bytes, have %d", need, len(dst))
	}
	out := huffmanEncode(dst[:0], src)
	return len(out), nil
}

// HuffmanDecode decodes src into dst[:len(dst)] (not growing it) and
// returns the number of bytes written, enforcing the same EOS and
// padding rules as huffmanDecode. Fails with ErrBufferTooSmall if the
// decoded output would not fit in dst.
func HuffmanDecode(dst, src []byte) (int, error) {
	decoded, err := huffmanDecode(nil, src)
	if err != nil {
		return 0, err
	}
	if len(decoded) > len(dst) {
		return 0, newErr(ErrCodeBufferTooSmall, "need %d bytes, have %d", len(decoded), len(dst))
	}
	copy(dst, decoded)
	return len(decoded), nil
}
