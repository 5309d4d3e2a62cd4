package ringbuffer

import (
	"github.com/moffa90/go-divelog/protocol"
)

// Marker bytes of the interleaved ring.
const (
	// DefaultEndOfProfile marks the most recently written profile byte
	DefaultEndOfProfile = 0x82

	// DefaultEndOfDive terminates every complete dive
	DefaultEndOfDive = 0x80

	// UnusedSampleCount marks a logbook slot that was never written
	UnusedSampleCount = 0xFFFF
)

// Layout describes where the dives live in a memory image.
// It is implemented by *LogbookLayout and *MarkerLayout.
type Layout interface {
	// Validate checks the layout against a memory of memsize bytes.
	Validate(memsize int) error

	// FingerprintLen returns the fingerprint length of a dive record.
	FingerprintLen() int
}

// LogbookLayout is an indexed logbook of fixed-size entries paired with a
// separate profile ring. Each entry holds the sample count of its profile.
type LogbookLayout struct {
	// EOPOffset locates the big-endian 16-bit end-of-profile pointer
	EOPOffset int `yaml:"eop_offset"`

	// LastOffset locates the 8-bit index of the newest logbook entry
	LastOffset int `yaml:"last_offset"`

	// LogbookBegin is the address of logbook entry 0
	LogbookBegin int `yaml:"logbook_begin"`

	// EntrySize is the size of one logbook entry
	EntrySize int `yaml:"entry_size"`

	// EntryCount is the number of logbook entries
	EntryCount int `yaml:"entry_count"`

	// ProfileBegin and ProfileEnd delimit the profile ring [begin, end)
	ProfileBegin int `yaml:"profile_begin"`
	ProfileEnd   int `yaml:"profile_end"`

	// SampleSize is the number of profile bytes per sample
	SampleSize int `yaml:"sample_size"`

	// SampleCountOffset locates the big-endian 16-bit sample count in an entry
	SampleCountOffset int `yaml:"sample_count_offset"`

	// FingerprintSize is the number of leading entry bytes identifying a dive
	FingerprintSize int `yaml:"fingerprint_size"`
}

// Validate implements Layout.
func (l *LogbookLayout) Validate(memsize int) error {
	switch {
	case l.EntrySize <= 0 || l.EntryCount <= 0:
		return layoutError("logbook entry size %d and count %d must be positive", l.EntrySize, l.EntryCount)
	case l.LogbookBegin < 0 || l.LogbookBegin+l.EntrySize*l.EntryCount > memsize:
		return layoutError("logbook 0x%04X+%dx%d exceeds memory size 0x%04X",
			l.LogbookBegin, l.EntryCount, l.EntrySize, memsize)
	case l.ProfileBegin < 0 || l.ProfileBegin >= l.ProfileEnd || l.ProfileEnd > memsize:
		return layoutError("profile ring 0x%04X-0x%04X outside memory size 0x%04X",
			l.ProfileBegin, l.ProfileEnd, memsize)
	case l.SampleSize <= 0:
		return layoutError("sample size %d must be positive", l.SampleSize)
	case l.SampleCountOffset < 0 || l.SampleCountOffset+2 > l.EntrySize:
		return layoutError("sample count offset %d outside entry size %d", l.SampleCountOffset, l.EntrySize)
	case l.EOPOffset < 0 || l.EOPOffset+2 > memsize:
		return layoutError("eop pointer offset 0x%04X outside memory size 0x%04X", l.EOPOffset, memsize)
	case l.LastOffset < 0 || l.LastOffset >= memsize:
		return layoutError("last index offset 0x%04X outside memory size 0x%04X", l.LastOffset, memsize)
	case l.FingerprintSize < 0 || l.FingerprintSize > l.EntrySize:
		return layoutError("fingerprint size %d outside entry size %d", l.FingerprintSize, l.EntrySize)
	}
	return nil
}

// FingerprintLen implements Layout.
func (l *LogbookLayout) FingerprintLen() int {
	return l.FingerprintSize
}

// MarkerLayout is a single ring where dives are delimited by in-band marker
// bytes. The newest dive ends with the end-of-profile marker, older dives
// with the end-of-dive marker.
type MarkerLayout struct {
	// EOPOffset locates the big-endian 16-bit end-of-profile pointer
	EOPOffset int `yaml:"eop_offset"`

	// Begin and End delimit the ring [begin, end)
	Begin int `yaml:"begin"`
	End   int `yaml:"end"`

	// Peek is how far behind the cursor the end-of-dive marker is looked for
	Peek int `yaml:"peek"`

	// EndOfProfile and EndOfDive are the marker bytes (zero selects the defaults)
	EndOfProfile byte `yaml:"end_of_profile"`
	EndOfDive    byte `yaml:"end_of_dive"`

	// FingerprintOffset and FingerprintSize locate the fingerprint in a dive
	FingerprintOffset int `yaml:"fingerprint_offset"`
	FingerprintSize   int `yaml:"fingerprint_size"`
}

// Validate implements Layout.
func (l *MarkerLayout) Validate(memsize int) error {
	switch {
	case l.Begin < 0 || l.Begin >= l.End || l.End > memsize:
		return layoutError("ring 0x%04X-0x%04X outside memory size 0x%04X", l.Begin, l.End, memsize)
	case l.Peek <= 0 || l.Peek >= l.End-l.Begin:
		return layoutError("peek %d outside ring size %d", l.Peek, l.End-l.Begin)
	case l.EOPOffset < 0 || l.EOPOffset+2 > memsize:
		return layoutError("eop pointer offset 0x%04X outside memory size 0x%04X", l.EOPOffset, memsize)
	case l.FingerprintOffset < 0 || l.FingerprintSize < 0:
		return layoutError("invalid fingerprint location %d+%d", l.FingerprintOffset, l.FingerprintSize)
	case l.eopMarker() == l.eodMarker():
		return layoutError("end-of-profile and end-of-dive markers are both 0x%02X", l.eopMarker())
	}
	return nil
}

// FingerprintLen implements Layout.
func (l *MarkerLayout) FingerprintLen() int {
	return l.FingerprintSize
}

func (l *MarkerLayout) eopMarker() byte {
	if l.EndOfProfile == 0 {
		return DefaultEndOfProfile
	}
	return l.EndOfProfile
}

func (l *MarkerLayout) eodMarker() byte {
	if l.EndOfDive == 0 {
		return DefaultEndOfDive
	}
	return l.EndOfDive
}

func layoutError(format string, args ...interface{}) error {
	return protocol.NewError(protocol.InvalidArgument, "layout", format, args...)
}
