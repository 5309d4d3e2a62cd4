package protocol

import "fmt"

// CalculatePageChecksum computes the 8-bit additive checksum of a page.
// The sum is seeded at zero and wraps modulo 256.
func CalculatePageChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// AppendPageChecksum appends the checksum of data to data.
func AppendPageChecksum(data []byte) []byte {
	return append(data, CalculatePageChecksum(data))
}

// VerifyPage checks a payload+checksum block. The last byte of block is the
// checksum of all bytes before it.
func VerifyPage(block []byte) error {
	if len(block) < 1 {
		return newError(Protocol, "verify page", fmt.Errorf("empty block"))
	}

	n := len(block) - 1
	expected := block[n]
	actual := CalculatePageChecksum(block[:n])
	if expected != actual {
		return &ChecksumError{Expected: expected, Actual: actual}
	}

	return nil
}
