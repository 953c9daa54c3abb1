// Package bitstring implements the mutation primitives and the similarity
// metric for the binary strings representing technological systems and
// search spaces. Strings are immutable values; every operator returns a
// new value and draws all randomness from an injected *rand.Rand.
package bitstring

import (
	"fmt"
	"math/rand"
)

// BitString is an ordered sequence of '0'/'1' symbols, length >= 1.
type BitString string

func (s BitString) Len() int {
	return len(s)
}

// Generate produces a string of the given length where each symbol is
// independently '1' with probability p. Callers validate p and length
// before constructing a society; out-of-range arguments are a
// programming error.
func Generate(rng *rand.Rand, p float64, length int) BitString {
	if length < 1 {
		panic(fmt.Sprintf("bitstring: length must be >= 1, got %d", length))
	}
	buf := make([]byte, length)
	for i := range buf {
		if rng.Float64() < p {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return BitString(buf)
}

// Flip complements a uniformly random symbol. Length is unchanged.
func Flip(rng *rand.Rand, s BitString) BitString {
	position := rng.Intn(len(s))
	buf := []byte(s)
	if buf[position] == '1' {
		buf[position] = '0'
	} else {
		buf[position] = '1'
	}
	return BitString(buf)
}

// Insert places a uniformly random symbol at a uniformly random position
// in [0, len(s)], so insertion can happen at either end. Length grows by one.
func Insert(rng *rand.Rand, s BitString) BitString {
	position := rng.Intn(len(s) + 1)
	symbol := byte('0')
	if rng.Float64() < 0.5 {
		symbol = '1'
	}
	buf := make([]byte, 0, len(s)+1)
	buf = append(buf, s[:position]...)
	buf = append(buf, symbol)
	buf = append(buf, s[position:]...)
	return BitString(buf)
}

// Delete removes a uniformly random symbol. Contraction below length 1 is
// disallowed: deleting from a length-1 string is a defined no-op.
func Delete(rng *rand.Rand, s BitString) BitString {
	if len(s) <= 1 {
		return s
	}
	position := rng.Intn(len(s))
	buf := make([]byte, 0, len(s)-1)
	buf = append(buf, s[:position]...)
	buf = append(buf, s[position+1:]...)
	return BitString(buf)
}

// Edit produces a candidate via flip, insert or delete (each with
// probability 1/3) and then decides acceptance. With probability
// acceptanceProb the candidate is kept only if it is strictly more
// similar to reference than s is (selection); otherwise the candidate is
// accepted unconditionally (drift). acceptanceProb 0.0 is pure drift,
// 1.0 is always selective.
func Edit(rng *rand.Rand, s, reference BitString, acceptanceProb float64) BitString {
	var candidate BitString
	switch p := rng.Float64(); {
	case p < 1.0/3.0:
		candidate = Flip(rng, s)
	case p < 2.0/3.0:
		candidate = Insert(rng, s)
	default:
		candidate = Delete(rng, s)
	}

	if rng.Float64() < acceptanceProb {
		if Similarity(candidate, reference) <= Similarity(s, reference) {
			return s
		}
		return candidate
	}
	return candidate
}
