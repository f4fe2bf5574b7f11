// Package checked implements size arithmetic that reports overflow instead of
// wrapping. Every size derived from wire data goes through it before it gates a
// memory access.
package checked

import (
	"math"
	"math/bits"
)

// Add returns a+b and whether the sum fits in a non-negative int.
// Negative operands are rejected.
func Add(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if b > math.MaxInt-a {
		return 0, false
	}

	return a + b, true
}

// Sum adds all sizes, failing on the first overflow.
func Sum(sizes ...int) (int, bool) {
	total := 0
	for _, s := range sizes {
		var ok bool
		if total, ok = Add(total, s); !ok {
			return 0, false
		}
	}

	return total, true
}

// Mul returns a*b and whether the product fits in a non-negative int.
// Negative operands are rejected.
func Mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}

	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}

	return int(lo), true
}

// Span computes the byte length of count elements of elemSize bytes each,
// following a header of headerSize bytes.
func Span(headerSize int, count uint32, elemSize int) (int, bool) {
	payload, ok := Mul(int(count), elemSize)
	if !ok {
		return 0, false
	}

	return Add(headerSize, payload)
}
