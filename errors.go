package hpack

import (
	"errors"
	"fmt"
)

// Error codes for the HPACK/XPACK codec.
//
// These map to RFC 7541's failure taxonomy: a CompressionError always
// means "close the connection", SizeExceeded means "fail the stream
// but keep the connection", and the rest are local to one call.
type ErrorCode uint8

const (
	// ErrCodeCompressionError covers every RFC 7541 wire-format
	// violation: bad integer encoding, bad Huffman padding,
	// out-of-range index, a misplaced or oversized table-size update,
	// truncated input.
	ErrCodeCompressionError ErrorCode = iota
	// ErrCodeSizeExceeded means the accumulated uncompressed header
	// list exceeded the host's configured limit.
	ErrCodeSizeExceeded
	// ErrCodeHTTPSemanticViolation means the block decoded cleanly but
	// violates an HTTP/2-level (not HPACK-level) rule, e.g. an
	// uppercase literal header name.
	ErrCodeHTTPSemanticViolation
	// ErrCodeBufferTooSmall means the caller-supplied output slice of
	// a bounded call (HuffmanEncode or HuffmanDecode) can't hold the
	// result.
	ErrCodeBufferTooSmall
	// ErrCodeInsertionRejected means a dynamic-table mutation could
	// not be completed because outstanding references blocked the
	// eviction it required.
	ErrCodeInsertionRejected
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeCompressionError:
		return "compression error"
	case ErrCodeSizeExceeded:
		return "header list size exceeded"
	case ErrCodeHTTPSemanticViolation:
		return "http semantic violation"
	case ErrCodeBufferTooSmall:
		return "buffer too small"
	case ErrCodeInsertionRejected:
		return "insertion rejected"
	default:
		return "unknown hpack error"
	}
}

// CodecError is the error type returned by every fallible operation in
// this package. Callers that need to branch on the failure category
// should use errors.Is against the Err* sentinels below, or inspect
// Code directly.
type CodecError struct {
	Code ErrorCode
	Msg  string
}

func (e *CodecError) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newErr(code ErrorCode, format string, args ...interface{}) *CodecError {
	return &CodecError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

var (
	// ErrCompressionError is the sentinel for ErrCodeCompressionError;
	// use errors.Is(err, ErrCompressionError) to test for it.
	ErrCompressionError = &CodecError{Code: ErrCodeCompressionError}
	// ErrSizeExceeded is the sentinel for ErrCodeSizeExceeded.
	ErrSizeExceeded = &CodecError{Code: ErrCodeSizeExceeded}
	// ErrHTTPSemanticViolation is the sentinel for ErrCodeHTTPSemanticViolation.
	ErrHTTPSemanticViolation = &CodecError{Code: ErrCodeHTTPSemanticViolation}
	// ErrBufferTooSmall is the sentinel for ErrCodeBufferTooSmall.
	ErrBufferTooSmall = &CodecError{Code: ErrCodeBufferTooSmall}
	// ErrInsertionRejected is the sentinel for ErrCodeInsertionRejected.
	ErrInsertionRejected = &CodecError{Code: ErrCodeInsertionRejected}
)

// errFieldNotFound is not returned by any function in this package;
// index lookups report an out-of-range index as an
// ErrCodeCompressionError CodecError directly.
var errFieldNotFound = errors.New("indexed field not found")
