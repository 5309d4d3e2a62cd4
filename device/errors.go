package device

import (
	"fmt"

	"github.com/moffa90/go-divelog/protocol"
)

// AlignmentError indicates that a read address or size is not a multiple of
// the page size.
type AlignmentError struct {
	Address int
	Size    int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("address 0x%04X and size %d must be multiples of %d",
		e.Address, e.Size, protocol.PageSize)
}

// Is matches protocol.ErrInvalidArgument.
func (e *AlignmentError) Is(target error) bool {
	return target == protocol.ErrInvalidArgument
}

// RangeError indicates that a read extends past the device memory.
type RangeError struct {
	Address    int
	Size       int
	MemorySize int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("read 0x%04X+%d is out of range: memory size is 0x%04X",
		e.Address, e.Size, e.MemorySize)
}

// Is matches protocol.ErrInvalidArgument.
func (e *RangeError) Is(target error) bool {
	return target == protocol.ErrInvalidArgument
}

// FingerprintSizeError indicates a fingerprint of the wrong length.
type FingerprintSizeError struct {
	Expected int
	Actual   int
}

func (e *FingerprintSizeError) Error() string {
	return fmt.Sprintf("fingerprint must be exactly %d bytes, got %d", e.Expected, e.Actual)
}

// Is matches protocol.ErrInvalidArgument.
func (e *FingerprintSizeError) Is(target error) bool {
	return target == protocol.ErrInvalidArgument
}

// UnsupportedModelError indicates that no model with the requested name
// exists in the catalogue.
type UnsupportedModelError struct {
	Name string
}

func (e *UnsupportedModelError) Error() string {
	if e.Name == "" {
		return "no models in catalogue"
	}
	return fmt.Sprintf("unsupported model %q", e.Name)
}

// Is matches protocol.ErrInvalidArgument.
func (e *UnsupportedModelError) Is(target error) bool {
	return target == protocol.ErrInvalidArgument
}
