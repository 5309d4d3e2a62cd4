package protocol

import (
	"bytes"
	"fmt"
)

// CheckTerminator verifies that the last byte of an answer is the NAK frame
// terminator.
func CheckTerminator(answer []byte) error {
	if len(answer) == 0 {
		return NewError(Protocol, "check terminator", "empty answer")
	}
	if last := answer[len(answer)-1]; last != NAK {
		return NewError(Protocol, "check terminator",
			"unexpected answer byte: got 0x%02X, expected 0x%02X", last, NAK)
	}
	return nil
}

// ParsePages validates a multi-page read answer and copies the page payloads
// into dst.
//
// Answer structure:
//
//	[PAGE(16)][CHECKSUM] x npages [NAK]
//
// A checksum mismatch is fatal: the bytes already received cannot be trusted.
func ParsePages(answer []byte, npages int, dst []byte) error {
	if len(answer) != ReadAnswerSize(npages) {
		return NewError(Protocol, "parse pages",
			"answer length mismatch: got %d bytes, expected %d", len(answer), ReadAnswerSize(npages))
	}
	if len(dst) < npages*PageSize {
		return NewError(InvalidArgument, "parse pages",
			"destination too small: got %d bytes, need %d", len(dst), npages*PageSize)
	}
	if err := CheckTerminator(answer); err != nil {
		return err
	}

	offset := 0
	for i := 0; i < npages; i++ {
		block := answer[offset : offset+PageBlockSize]
		if err := VerifyPage(block); err != nil {
			return newError(Protocol, fmt.Sprintf("page %d of %d", i+1, npages), err)
		}
		copy(dst[i*PageSize:], block[:PageSize])
		offset += PageBlockSize
	}

	return nil
}

// ParseVersionAnswer validates a Version answer and returns the version page.
//
// Answer structure:
//
//	[PAGE(16)][CHECKSUM][NAK]
func ParseVersionAnswer(answer []byte) ([]byte, error) {
	page := make([]byte, PageSize)
	if err := ParsePages(answer, 1, page); err != nil {
		return nil, err
	}
	return page, nil
}

// ParseKeepaliveAnswer validates a Keepalive answer. The device echoes a NAK
// byte before the terminator.
func ParseKeepaliveAnswer(answer []byte) error {
	if len(answer) != KeepaliveAnswerSize {
		return NewError(Protocol, "parse keepalive",
			"answer length mismatch: got %d bytes, expected %d", len(answer), KeepaliveAnswerSize)
	}
	if answer[0] != NAK {
		return NewError(Protocol, "parse keepalive",
			"unexpected answer byte: got 0x%02X, expected 0x%02X", answer[0], NAK)
	}
	return CheckTerminator(answer)
}

// MatchInitReply reports whether a cable handshake reply equals InitReply.
func MatchInitReply(reply []byte) bool {
	return bytes.Equal(reply, InitReply[:])
}

// MatchSignature reports whether a version page matches a signature.
// A zero byte in the signature matches any byte (firmware digits vary).
func MatchSignature(version, signature []byte) bool {
	if len(version) < len(signature) || len(signature) == 0 {
		return false
	}
	for i, s := range signature {
		if s != 0 && s != version[i] {
			return false
		}
	}
	return true
}
