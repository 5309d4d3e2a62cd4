package simulator

import (
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/moffa90/go-divelog/models"
	"github.com/moffa90/go-divelog/ringbuffer"
)

// Identification written into generated images.
const (
	GeneratedModel    = 0x01
	GeneratedFirmware = 0x17
	GeneratedSerial   = 0x00012345
)

// VersionPage builds the version page a device of model m would report.
// Wildcard bytes of the signature are filled from firmware, in order.
func VersionPage(m *models.Model, firmware string) []byte {
	page := make([]byte, len(m.Signature))
	copy(page, m.Signature)

	j := 0
	for i := range page {
		if page[i] == 0 && j < len(firmware) {
			page[i] = firmware[j]
			j++
		}
	}
	return page
}

// Generate fills a memory image of model m with ndives synthetic dives,
// written so that the newest ones wrap around the end of the ring. It
// returns the image and the dives it contains, newest first.
//
// The content is pseudo-random but deterministic for a given model and
// dive count.
func Generate(m *models.Model, ndives int) ([]byte, [][]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(int64(m.MemorySize + ndives)))
	data := make([]byte, m.MemorySize)
	writeDevInfo(data, m.DevInfo)

	var dives [][]byte
	var err error
	switch {
	case m.Logbook != nil:
		dives, err = generateLogbook(data, m.Logbook, ndives, rng)
	case m.Marker != nil:
		dives, err = generateMarked(data, m.Marker, ndives, rng)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", m.Name, err)
	}

	return data, dives, nil
}

func writeDevInfo(data []byte, l models.DevInfoLayout) {
	writeField(data, l.Model, GeneratedModel)
	writeField(data, l.Firmware, GeneratedFirmware)
	writeField(data, l.Serial, GeneratedSerial)
}

func writeField(data []byte, f models.Field, v uint32) {
	for i := f.Size - 1; i >= 0; i-- {
		data[f.Offset+i] = byte(v)
		v >>= 8
	}
}

func generateLogbook(data []byte, l *ringbuffer.LogbookLayout, ndives int, rng *rand.Rand) ([][]byte, error) {
	if ndives > l.EntryCount {
		return nil, fmt.Errorf("%d dives exceed %d logbook entries", ndives, l.EntryCount)
	}

	for i := l.LogbookBegin; i < l.LogbookBegin+l.EntryCount*l.EntrySize; i++ {
		data[i] = 0xFF
	}

	ringSize := l.ProfileEnd - l.ProfileBegin
	maxSamples := 1
	if ndives > 0 {
		maxSamples = ringSize / l.SampleSize / ndives
	}
	if maxSamples > 64 {
		maxSamples = 64
	}

	samples := make([]int, ndives)
	total := 0
	for k := range samples {
		samples[k] = rng.Intn(maxSamples + 1)
		total += samples[k] * l.SampleSize
	}

	// Start half the profiles before the end of the ring so the newer ones wrap.
	current := ringbuffer.Decrement(l.ProfileBegin, total/2, l.ProfileBegin, l.ProfileEnd)
	if total == 0 {
		current = l.ProfileBegin
	}

	dives := make([][]byte, 0, ndives)
	for k, n := range samples {
		offset := l.LogbookBegin + k*l.EntrySize
		entry := data[offset : offset+l.EntrySize]
		rng.Read(entry)
		if l.FingerprintSize > 0 {
			entry[l.FingerprintSize-1] = byte(k + 1)
		}
		binary.BigEndian.PutUint16(entry[l.SampleCountOffset:], uint16(n))

		dive := append([]byte(nil), entry...)
		for j := 0; j < n*l.SampleSize; j++ {
			b := byte(rng.Intn(256))
			data[current] = b
			dive = append(dive, b)
			current = ringbuffer.Increment(current, 1, l.ProfileBegin, l.ProfileEnd)
		}
		dives = append([][]byte{dive}, dives...)
	}

	binary.BigEndian.PutUint16(data[l.EOPOffset:], uint16(current))
	last := 0
	if ndives > 0 {
		last = ndives - 1
	}
	data[l.LastOffset] = byte(last)

	return dives, nil
}

func generateMarked(data []byte, l *ringbuffer.MarkerLayout, ndives int, rng *rand.Rand) ([][]byte, error) {
	eopMarker, eodMarker := byte(ringbuffer.DefaultEndOfProfile), byte(ringbuffer.DefaultEndOfDive)
	if l.EndOfProfile != 0 {
		eopMarker = l.EndOfProfile
	}
	if l.EndOfDive != 0 {
		eodMarker = l.EndOfDive
	}

	minLength := l.Peek
	if n := l.FingerprintOffset + l.FingerprintSize; n > minLength {
		minLength = n
	}

	ringSize := l.End - l.Begin
	lengths := make([]int, ndives)
	total := 1
	for k := range lengths {
		lengths[k] = minLength + rng.Intn(48)
		total += lengths[k] + 1
	}
	if total >= ringSize {
		return nil, fmt.Errorf("%d dives need %d bytes, ring holds %d", ndives, total, ringSize)
	}

	start := ringbuffer.Decrement(l.Begin, total/2, l.Begin, l.End)
	data[ringbuffer.Decrement(start, 1, l.Begin, l.End)] = eodMarker

	dives := make([][]byte, 0, ndives)
	current := start
	eop := start
	for k, n := range lengths {
		var dive []byte
		for j := 0; j < n; j++ {
			b := byte(rng.Intn(0x80))
			if j == l.FingerprintOffset+l.FingerprintSize-1 {
				b = byte(k + 1)
			}
			for b == eopMarker || b == eodMarker {
				b++
			}
			data[current] = b
			dive = append(dive, b)
			current = ringbuffer.Increment(current, 1, l.Begin, l.End)
		}

		marker := eodMarker
		if k == ndives-1 {
			marker = eopMarker
		}
		data[current] = marker
		dive = append(dive, marker)
		eop = current
		current = ringbuffer.Increment(current, 1, l.Begin, l.End)

		dives = append([][]byte{dive}, dives...)
	}

	if ndives == 0 {
		data[eop] = eopMarker
	}
	binary.BigEndian.PutUint16(data[l.EOPOffset:], uint16(eop))

	return dives, nil
}
