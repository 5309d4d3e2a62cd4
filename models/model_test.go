package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moffa90/go-divelog/protocol"
)

func versionPage(s string) []byte {
	page := make([]byte, protocol.PageSize)
	copy(page, s)
	return page
}

func TestBuiltinModelsAreValid(t *testing.T) {
	for _, m := range Builtin() {
		t.Run(m.Name, func(t *testing.T) {
			require.NoError(t, m.Validate())
			assert.Len(t, m.Signature, protocol.PageSize)
			assert.NotNil(t, m.Layout())
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		version string
		want    string
		ok      bool
	}{
		{"DARWINAIR 01 16K", "Darwin Air", true},
		{"DARWINAIR 17 16K", "Darwin Air", true},
		{"VYPER     23  8K", "Vyper", true},
		{"SPYDER    10  8K", "Spyder", true},
		{"DARWINAIR 01 32K", "", false},
		{"UNKNOWN DEVICE  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			m, ok := Match(versionPage(tt.version))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				require.NotNil(t, m)
				assert.Equal(t, tt.want, m.Name)
			} else {
				assert.Nil(t, m)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	m, err := Lookup("vyper")
	require.NoError(t, err)
	assert.Equal(t, "Vyper", m.Name)
	assert.Equal(t, 5, m.FingerprintSize())

	_, err = Lookup("Aladin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, protocol.ErrInvalidArgument))
}

func TestBuiltinReturnsCopies(t *testing.T) {
	m, err := Lookup("Darwin Air")
	require.NoError(t, err)

	m.Logbook.EntryCount = 1
	m.MemorySize = 0

	fresh, err := Lookup("Darwin Air")
	require.NoError(t, err)
	assert.Equal(t, 50, fresh.Logbook.EntryCount)
	assert.Equal(t, 0x4000, fresh.MemorySize)
}

func TestCatalogueDefault(t *testing.T) {
	assert.Equal(t, "Darwin Air", Builtin().Default().Name)
	assert.Nil(t, Catalogue(nil).Default())
}

func TestDevInfoDecode(t *testing.T) {
	data := make([]byte, 0x40)
	data[0x08] = 0x12
	data[0x09] = 0x34
	data[0x24] = 0x0A
	data[0x25] = 0x02
	copy(data[0x26:], []byte{0x00, 0x01, 0x86, 0xA0})

	darwin, err := Lookup("Darwin Air")
	require.NoError(t, err)
	assert.Equal(t, DevInfo{Serial: 0x1234}, darwin.DevInfo.Decode(data))

	vyper, err := Lookup("Vyper")
	require.NoError(t, err)
	assert.Equal(t, DevInfo{Model: 0x0A, Firmware: 0x02, Serial: 100000}, vyper.DevInfo.Decode(data))
}

func TestModelValidate(t *testing.T) {
	base := func() *Model {
		m, err := Lookup("Spyder")
		require.NoError(t, err)
		return m
	}

	tests := []struct {
		name   string
		modify func(m *Model)
	}{
		{"empty name", func(m *Model) { m.Name = "" }},
		{"empty signature", func(m *Model) { m.Signature = "" }},
		{"long signature", func(m *Model) { m.Signature = "SPYDER    00  8K+" }},
		{"zero memory", func(m *Model) { m.MemorySize = 0 }},
		{"no layout", func(m *Model) { m.Marker = nil }},
		{"devinfo size", func(m *Model) { m.DevInfo.Serial.Size = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.modify(m)
			err := m.Validate()
			assert.True(t, errors.Is(err, protocol.ErrInvalidArgument), "error = %v", err)
		})
	}
}
