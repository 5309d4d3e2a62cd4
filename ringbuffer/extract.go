package ringbuffer

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/moffa90/go-divelog/protocol"
)

// DiveFunc receives one dive record and its fingerprint slice. Both slices
// are only valid for the duration of the call; copy them to keep them.
// Returning false stops the extraction.
type DiveFunc func(dive, fingerprint []byte) bool

// Extract walks the rings of data described by layout, newest dive first,
// and passes every dive to fn. It stops without delivering when a dive's
// fingerprint equals fingerprint. An empty fingerprint extracts everything.
//
// The pointers stored in data are checked before use: a pointer or index
// outside its declared bounds aborts with a DataCorruption error.
func Extract(data []byte, layout Layout, fingerprint []byte, fn DiveFunc) error {
	if layout == nil {
		return protocol.NewError(protocol.InvalidArgument, "extract", "layout cannot be nil")
	}
	if err := layout.Validate(len(data)); err != nil {
		return err
	}
	if len(fingerprint) != 0 && len(fingerprint) != layout.FingerprintLen() {
		return protocol.NewError(protocol.InvalidArgument, "extract",
			"fingerprint must be exactly %d bytes, got %d", layout.FingerprintLen(), len(fingerprint))
	}

	switch l := layout.(type) {
	case *LogbookLayout:
		return extractLogbook(data, l, fingerprint, fn)
	case *MarkerLayout:
		return extractMarked(data, l, fingerprint, fn)
	default:
		return protocol.NewError(protocol.InvalidArgument, "extract", "unsupported layout %T", layout)
	}
}

// extractLogbook walks the logbook newest to oldest. Each dive is the
// logbook entry followed by its profile, which ends where the previous
// (newer) profile began.
func extractLogbook(data []byte, l *LogbookLayout, fingerprint []byte, fn DiveFunc) error {
	eop := int(binary.BigEndian.Uint16(data[l.EOPOffset:]))
	if eop < l.ProfileBegin || eop >= l.ProfileEnd {
		return corruption("end of profile pointer 0x%04X outside 0x%04X-0x%04X", eop, l.ProfileBegin, l.ProfileEnd)
	}

	last := int(data[l.LastOffset])
	if last >= l.EntryCount {
		return corruption("logbook index %d outside %d entries", last, l.EntryCount)
	}

	// The logbook can hold more entries than the profile ring has room for.
	// remaining starts at the ring size and detects the last valid profile.
	ringSize := l.ProfileEnd - l.ProfileBegin
	remaining := ringSize
	buffer := make([]byte, l.EntrySize+ringSize)

	current := eop
	for i := 0; i < l.EntryCount; i++ {
		idx := (l.EntryCount + last - i) % l.EntryCount
		offset := l.LogbookBegin + idx*l.EntrySize
		entry := data[offset : offset+l.EntrySize]

		nsamples := int(binary.BigEndian.Uint16(entry[l.SampleCountOffset:]))
		length := nsamples * l.SampleSize
		if nsamples == UnusedSampleCount || length > remaining {
			break
		}

		copy(buffer, entry)
		profile := buffer[l.EntrySize : l.EntrySize+length]

		if current < l.ProfileBegin+length {
			head := current - l.ProfileBegin
			tail := length - head
			copy(profile[:tail], data[l.ProfileEnd-tail:l.ProfileEnd])
			copy(profile[tail:], data[l.ProfileBegin:current])
			current = l.ProfileEnd - tail
		} else {
			copy(profile, data[current-length:current])
			current -= length
		}

		dive := buffer[:l.EntrySize+length]
		fp := dive[:l.FingerprintSize]
		if len(fingerprint) != 0 && bytes.Equal(fp, fingerprint) {
			return nil
		}

		if fn != nil && !fn(dive, fp) {
			return nil
		}

		remaining -= length
	}

	return nil
}

// extractMarked steps backward from the end-of-profile marker. A dive starts
// right after an end-of-dive marker and runs up to and including the marker
// that closes it.
func extractMarked(data []byte, l *MarkerLayout, fingerprint []byte, fn DiveFunc) error {
	eopMarker, eodMarker := l.eopMarker(), l.eodMarker()

	eop := int(binary.BigEndian.Uint16(data[l.EOPOffset:]))
	if eop < l.Begin || eop >= l.End {
		return corruption("end of profile pointer 0x%04X outside 0x%04X-0x%04X", eop, l.Begin, l.End)
	}
	if data[eop] != eopMarker {
		return corruption("no end of profile marker at 0x%04X: got 0x%02X", eop, data[eop])
	}

	ringSize := l.End - l.Begin
	buffer := make([]byte, ringSize)

	current := eop
	previous := eop
	for i := 0; i < ringSize; i++ {
		current = Decrement(current, 1, l.Begin, l.End)

		// Back at an end of profile marker: the whole ring was consumed.
		if data[current] == eopMarker {
			break
		}

		// The look-behind must not reach bytes that were already consumed.
		if i+1+l.Peek >= ringSize {
			continue
		}

		marker := Decrement(current, l.Peek, l.Begin, l.End)
		if data[marker] != eodMarker {
			continue
		}

		start := Increment(marker, 1, l.Begin, l.End)
		length := Distance(start, previous, l.Begin, l.End) + 1
		copyWrapped(buffer, data, start, length, l.Begin, l.End)

		dive := buffer[:length]
		var fp []byte
		if end := l.FingerprintOffset + l.FingerprintSize; end <= length {
			fp = dive[l.FingerprintOffset:end]
		}
		if len(fingerprint) != 0 && bytes.Equal(fp, fingerprint) {
			return nil
		}

		if fn != nil && !fn(dive, fp) {
			return nil
		}

		previous = marker
	}

	return nil
}

func corruption(format string, args ...interface{}) error {
	return &protocol.Error{Kind: protocol.DataCorruption, Op: "extract", Err: fmt.Errorf(format, args...)}
}
