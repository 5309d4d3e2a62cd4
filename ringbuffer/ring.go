package ringbuffer

// Ring arithmetic over the half-open region [begin, end). All helpers expect
// begin <= a < end and begin < end.

// Distance returns the number of bytes from a forward to b, wrapping at end.
// Distance(a, a) is zero.
func Distance(a, b, begin, end int) int {
	if b >= a {
		return b - a
	}
	return (end - begin) - (a - b)
}

// Increment moves a forward by delta bytes, wrapping at end.
func Increment(a, delta, begin, end int) int {
	size := end - begin
	offset := (a - begin + delta%size) % size
	return begin + offset
}

// Decrement moves a backward by delta bytes, wrapping at begin.
func Decrement(a, delta, begin, end int) int {
	size := end - begin
	offset := (a - begin + size - delta%size) % size
	return begin + offset
}

// copyWrapped copies n bytes starting at start into dst, continuing at
// begin when the run crosses end. It performs at most two copies.
func copyWrapped(dst, data []byte, start, n, begin, end int) {
	if start+n > end {
		a := end - start
		copy(dst[:a], data[start:end])
		copy(dst[a:n], data[begin:begin+n-a])
		return
	}
	copy(dst[:n], data[start:start+n])
}
