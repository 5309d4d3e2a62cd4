package models

import (
	"strings"

	"github.com/moffa90/go-divelog/protocol"
	"github.com/moffa90/go-divelog/ringbuffer"
)

// Catalogue is an ordered list of models. The first model is the default
// used when a device cannot be identified.
type Catalogue []*Model

// Lookup returns a copy of the model with the given name (case-insensitive).
func (c Catalogue) Lookup(name string) (*Model, error) {
	for _, m := range c {
		if strings.EqualFold(m.Name, name) {
			return m.Clone(), nil
		}
	}
	return nil, protocol.NewError(protocol.InvalidArgument, "lookup", "unknown model %q", name)
}

// Match returns a copy of the first model whose signature matches the
// version page.
func (c Catalogue) Match(version []byte) (*Model, bool) {
	for _, m := range c {
		if m.Matches(version) {
			return m.Clone(), true
		}
	}
	return nil, false
}

// Default returns a copy of the first model, or nil for an empty catalogue.
func (c Catalogue) Default() *Model {
	if len(c) == 0 {
		return nil
	}
	return c[0].Clone()
}

// Builtin returns a fresh copy of the built-in catalogue.
func Builtin() Catalogue {
	return Catalogue{
		{
			Name:       "Darwin Air",
			Signature:  "DARWINAIR \x00\x00 16K",
			MemorySize: 0x4000,
			DevInfo: DevInfoLayout{
				Serial: Field{Offset: 0x08, Size: 2},
			},
			Logbook: &ringbuffer.LogbookLayout{
				EOPOffset:         0x8A,
				LastOffset:        0x8C,
				LogbookBegin:      0x0100,
				EntrySize:         60,
				EntryCount:        50,
				ProfileBegin:      0x0CC0,
				ProfileEnd:        0x3FFF,
				SampleSize:        3,
				SampleCountOffset: 6,
				FingerprintSize:   6,
			},
		},
		{
			Name:       "Vyper",
			Signature:  "VYPER     \x00\x00  8K",
			MemorySize: 0x2000,
			DevInfo: DevInfoLayout{
				Model:    Field{Offset: 0x24, Size: 1},
				Firmware: Field{Offset: 0x25, Size: 1},
				Serial:   Field{Offset: 0x26, Size: 4},
			},
			Marker: &ringbuffer.MarkerLayout{
				EOPOffset:         0x51,
				Begin:             0x71,
				End:               0x2000,
				Peek:              5,
				FingerprintOffset: 9,
				FingerprintSize:   5,
			},
		},
		{
			Name:       "Spyder",
			Signature:  "SPYDER    \x00\x00  8K",
			MemorySize: 0x2000,
			DevInfo: DevInfoLayout{
				Model:    Field{Offset: 0x16, Size: 1},
				Firmware: Field{Offset: 0x17, Size: 1},
				Serial:   Field{Offset: 0x18, Size: 4},
			},
			Marker: &ringbuffer.MarkerLayout{
				EOPOffset:         0x1C,
				Begin:             0x4C,
				End:               0x2000,
				Peek:              3,
				FingerprintOffset: 6,
				FingerprintSize:   5,
			},
		},
	}
}

// Lookup returns a copy of the built-in model with the given name.
func Lookup(name string) (*Model, error) {
	return Builtin().Lookup(name)
}

// Match returns a copy of the built-in model identified by a version page.
func Match(version []byte) (*Model, bool) {
	return Builtin().Match(version)
}
