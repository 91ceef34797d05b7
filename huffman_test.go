package hpack

import (
	"bytes"
	"testing"
)

// RFC 7541 Appendix C.4.1: Huffman-encoding "custom-key".
func TestHuffmanEncodeCustomKey(t *testing.T) {
	want := []byte{0x25, 0xa8, 0x49, 0xe9, 0x5b, 0xa9, 0x7d, 0x7f}
	got := huffmanEncode(nil, []byte("custom-key"))
	if !bytes.Equal(got, want) {
		t.Fatalf("huffmanEncode(custom-key) = % x, want % x", got, want)
	}
}

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"a",
		"www.example.com",
		"custom-key",
		"no-cache",
		"302",
		"private",
		"Mon, 21 Oct 2013 20:13:21 GMT",
		"https://www.example.com",
	}
	for _, s := range cases {
		enc := huffmanEncode(nil, []byte(s))
		dec, err := huffmanDecode(nil, enc)
		if err != nil {
			t.Fatalf("huffmanDecode(encode(%q)) error: %v", s, err)
		}
		if string(dec) != s {
			t.Fatalf("round trip mismatch: got %q, want %q", dec, s)
		}
	}
}

func TestHuffmanDecodeRejectsEOS(t *testing.T) {
	// The EOS code is all-ones, 30 bits long; four bytes of 0xff
	// followed by 0xfc carry 30 one-bits, which decode to a full EOS
	// symbol that must be rejected.
	src := []byte{0xff, 0xff, 0xff, 0xff, 0xfc}
	if _, err := huffmanDecode(nil, src); err == nil {
		t.Fatal("expected error decoding a stream containing EOS")
	}
}

func TestHuffmanDecodeRejectsBadPadding(t *testing.T) {
	// '0' is {0x0, 5 bits}. A full byte leaves 3 padding bits; they
	// must be one-bits. Here they're zero, which must be rejected.
	enc := []byte{0x00}
	if _, err := huffmanDecode(nil, enc); err == nil {
		t.Fatal("expected error on zero padding bits")
	}
}

func TestHuffmanDecodeRejectsLongPadding(t *testing.T) {
	// '0' at 5 bits plus a full extra byte of padding is more than 7
	// bits of trailing padding, which must be rejected even though
	// every padding bit is one.
	enc := []byte{0x07, 0xff}
	if _, err := huffmanDecode(nil, enc); err == nil {
		t.Fatal("expected error on over-long padding")
	}
}

func TestHuffmanEncodeDecodeBounded(t *testing.T) {
	src := []byte("custom-key")
	dst := make([]byte, 8)
	n, err := HuffmanEncode(dst, src)
	if err != nil {
		t.Fatalf("HuffmanEncode: %v", err)
	}
	if n != 8 {
		t.Fatalf("HuffmanEncode wrote %d bytes, want 8", n)
	}

	small := make([]byte, 1)
	if _, err := HuffmanEncode(small, src); err == nil {
		t.Fatal("expected ErrBufferTooSmall for undersized dst")
	}

	out := make([]byte, len(src))
	n, err = HuffmanDecode(out, dst[:n])
	if err != nil {
		t.Fatalf("HuffmanDecode: %v", err)
	}
	if string(out[:n]) != string(src) {
		t.Fatalf("HuffmanDecode = %q, want %q", out[:n], src)
	}

	tooSmall := make([]byte, len(src)-1)
	if _, err := HuffmanDecode(tooSmall, dst); err == nil {
		t.Fatal("expected ErrBufferTooSmall for undersized dst")
	}
}
