package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculatePageChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "empty data",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "single byte",
			data:     []byte{0x01},
			expected: 0x01,
		},
		{
			name:     "multiple bytes",
			data:     []byte{0x01, 0x02, 0x03, 0x04},
			expected: 0x0A,
		},
		{
			name:     "all ones wraps",
			data:     []byte{0xFF, 0xFF, 0xFF, 0xFF},
			expected: 0xFC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePageChecksum(tt.data)
			if result != tt.expected {
				t.Errorf("CalculatePageChecksum() = 0x%02X, want 0x%02X", result, tt.expected)
			}
		})
	}
}

func testPage(seed byte) []byte {
	page := make([]byte, PageSize)
	for i := range page {
		page[i] = seed + byte(i*7)
	}
	return page
}

func TestPageChecksumRoundTrip(t *testing.T) {
	for seed := 0; seed < 256; seed += 17 {
		block := AppendPageChecksum(testPage(byte(seed)))
		require.NoError(t, VerifyPage(block), "seed %d", seed)
	}
}

func TestPageChecksumDetectsSingleByteFlip(t *testing.T) {
	block := AppendPageChecksum(testPage(0x42))

	for i := 0; i < PageSize; i++ {
		for _, delta := range []byte{0x01, 0x80, 0xFF} {
			corrupted := append([]byte(nil), block...)
			corrupted[i] += delta

			err := VerifyPage(corrupted)
			require.Errorf(t, err, "byte %d delta 0x%02X", i, delta)

			var ce *ChecksumError
			require.True(t, errors.As(err, &ce))
			assert.True(t, errors.Is(err, ErrProtocol))
		}
	}
}

func TestVerifyPageEmpty(t *testing.T) {
	err := VerifyPage(nil)
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
}

func BenchmarkCalculatePageChecksum(b *testing.B) {
	data := make([]byte, PageSize)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CalculatePageChecksum(data)
	}
}
