package ringbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
	}{
		{"same position", 0x20, 0x20, 0},
		{"forward", 0x20, 0x28, 8},
		{"wraps at end", 0x3E, 0x12, 4},
		{"one behind", 0x21, 0x20, 47},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b, 0x10, 0x40))
		})
	}
}

func TestIncrementDecrement(t *testing.T) {
	const begin, end = 0x10, 0x40

	assert.Equal(t, 0x11, Increment(0x10, 1, begin, end))
	assert.Equal(t, 0x10, Increment(0x3F, 1, begin, end))
	assert.Equal(t, 0x12, Increment(0x3E, 4, begin, end))
	assert.Equal(t, 0x3F, Decrement(0x10, 1, begin, end))
	assert.Equal(t, 0x3E, Decrement(0x12, 4, begin, end))
	assert.Equal(t, 0x20, Decrement(0x20, end-begin, begin, end))

	for a := begin; a < end; a++ {
		for delta := 0; delta <= end-begin; delta++ {
			b := Increment(a, delta, begin, end)
			assert.Equal(t, a, Decrement(b, delta, begin, end))
			if delta < end-begin {
				assert.Equal(t, delta, Distance(a, b, begin, end))
			}
		}
	}
}

func TestCopyWrapped(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	dst := make([]byte, 5)

	copyWrapped(dst, data, 7, 5, 2, 10)
	assert.Equal(t, []byte{7, 8, 9, 2, 3}, dst)

	copyWrapped(dst, data, 3, 4, 2, 10)
	assert.Equal(t, []byte{3, 4, 5, 6}, dst[:4])
}
