package models

import (
	"fmt"

	"github.com/moffa90/go-divelog/protocol"
	"github.com/moffa90/go-divelog/ringbuffer"
)

// Model holds the constant tables of one dive computer model.
// Exactly one of Logbook and Marker is set.
type Model struct {
	// Name is the marketing name of the model
	Name string `yaml:"name"`

	// Signature is matched against the version page. Zero bytes are wildcards.
	Signature string `yaml:"signature"`

	// MemorySize is the size of the full memory image in bytes
	MemorySize int `yaml:"memory_size"`

	// DevInfo locates the identification fields in the memory image
	DevInfo DevInfoLayout `yaml:"devinfo"`

	// Logbook is set for models with a logbook and a separate profile ring
	Logbook *ringbuffer.LogbookLayout `yaml:"logbook,omitempty"`

	// Marker is set for models with a single marker-delimited ring
	Marker *ringbuffer.MarkerLayout `yaml:"marker,omitempty"`
}

// Layout returns the ring buffer layout of the model, or nil if none is set.
func (m *Model) Layout() ringbuffer.Layout {
	switch {
	case m.Logbook != nil:
		return m.Logbook
	case m.Marker != nil:
		return m.Marker
	default:
		return nil
	}
}

// FingerprintSize returns the length of the fingerprint of a dive record.
func (m *Model) FingerprintSize() int {
	if l := m.Layout(); l != nil {
		return l.FingerprintLen()
	}
	return 0
}

// Matches reports whether a version page identifies this model.
func (m *Model) Matches(version []byte) bool {
	return protocol.MatchSignature(version, []byte(m.Signature))
}

// Validate checks the model tables for consistency.
func (m *Model) Validate() error {
	if m.Name == "" {
		return modelError("name cannot be empty")
	}
	if len(m.Signature) == 0 || len(m.Signature) > protocol.PageSize {
		return modelError("%s: signature must be 1-%d bytes, got %d", m.Name, protocol.PageSize, len(m.Signature))
	}
	if m.MemorySize <= 0 || m.MemorySize%protocol.PageSize != 0 {
		return modelError("%s: memory size 0x%04X must be a positive multiple of %d", m.Name, m.MemorySize, protocol.PageSize)
	}
	if m.Logbook != nil && m.Marker != nil {
		return modelError("%s: logbook and marker layouts are mutually exclusive", m.Name)
	}

	layout := m.Layout()
	if layout == nil {
		return modelError("%s: no ring buffer layout", m.Name)
	}
	if err := layout.Validate(m.MemorySize); err != nil {
		return fmt.Errorf("%s: %w", m.Name, err)
	}

	if err := m.DevInfo.validate(m.MemorySize); err != nil {
		return fmt.Errorf("%s: %w", m.Name, err)
	}

	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := *m
	if m.Logbook != nil {
		l := *m.Logbook
		c.Logbook = &l
	}
	if m.Marker != nil {
		l := *m.Marker
		c.Marker = &l
	}
	return &c
}

func (m *Model) String() string {
	return m.Name
}

// Field locates a big-endian unsigned integer of Size bytes at Offset.
// A zero Size means the value is not stored in memory.
type Field struct {
	Offset int `yaml:"offset"`
	Size   int `yaml:"size"`
}

// Decode reads the field from a memory image.
func (f Field) Decode(data []byte) uint32 {
	var v uint32
	for _, b := range data[f.Offset : f.Offset+f.Size] {
		v = v<<8 | uint32(b)
	}
	return v
}

func (f Field) validate(name string, memsize int) error {
	if f.Size < 0 || f.Size > 4 {
		return modelError("devinfo %s size %d must be 0-4", name, f.Size)
	}
	if f.Size > 0 && (f.Offset < 0 || f.Offset+f.Size > memsize) {
		return modelError("devinfo %s 0x%04X+%d outside memory size 0x%04X", name, f.Offset, f.Size, memsize)
	}
	return nil
}

// DevInfoLayout locates the identification fields of a model.
type DevInfoLayout struct {
	Model    Field `yaml:"model"`
	Firmware Field `yaml:"firmware"`
	Serial   Field `yaml:"serial"`
}

// Decode extracts the identification from a memory image.
func (l DevInfoLayout) Decode(data []byte) DevInfo {
	return DevInfo{
		Model:    l.Model.Decode(data),
		Firmware: l.Firmware.Decode(data),
		Serial:   l.Serial.Decode(data),
	}
}

func (l DevInfoLayout) validate(memsize int) error {
	if err := l.Model.validate("model", memsize); err != nil {
		return err
	}
	if err := l.Firmware.validate("firmware", memsize); err != nil {
		return err
	}
	return l.Serial.validate("serial", memsize)
}

// DevInfo identifies a connected device.
type DevInfo struct {
	Model    uint32
	Firmware uint32
	Serial   uint32
}

func modelError(format string, args ...interface{}) error {
	return protocol.NewError(protocol.InvalidArgument, "model", format, args...)
}
