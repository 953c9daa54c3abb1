package bitstring

import (
	"math/rand"
	"testing"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := Generate(rng, 0.5, 16)
	if s.Len() != 16 {
		t.Fatalf("expected length 16, got=%d", s.Len())
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			t.Fatalf("unexpected symbol %q at position %d", s[i], i)
		}
	}
}

func TestGenerateExtremeProbabilities(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	if s := Generate(rng, 1.0, 32); s != BitString("11111111111111111111111111111111") {
		t.Fatalf("expected all ones at p=1, got=%s", s)
	}
	if s := Generate(rng, 0.0, 32); s != BitString("00000000000000000000000000000000") {
		t.Fatalf("expected all zeros at p=0, got=%s", s)
	}
}

func TestGeneratePanicsOnInvalidLength(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for length 0")
		}
	}()
	Generate(rand.New(rand.NewSource(1)), 0.5, 0)
}

func TestFlipChangesExactlyOnePosition(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	original := Generate(rng, 0.5, 20)
	for trial := 0; trial < 100; trial++ {
		flipped := Flip(rng, original)
		if flipped.Len() != original.Len() {
			t.Fatalf("flip changed length: %d -> %d", original.Len(), flipped.Len())
		}
		diffs := 0
		for i := 0; i < len(original); i++ {
			if original[i] != flipped[i] {
				diffs++
			}
		}
		if diffs != 1 {
			t.Fatalf("expected exactly one flipped position, got=%d", diffs)
		}
	}
}

func TestInsertGrowsByOne(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	original := Generate(rng, 0.5, 8)
	for trial := 0; trial < 100; trial++ {
		grown := Insert(rng, original)
		if grown.Len() != original.Len()+1 {
			t.Fatalf("expected length %d, got=%d", original.Len()+1, grown.Len())
		}
	}
}

func TestDeleteShrinksByOne(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	original := Generate(rng, 0.5, 8)
	shrunk := Delete(rng, original)
	if shrunk.Len() != original.Len()-1 {
		t.Fatalf("expected length %d, got=%d", original.Len()-1, shrunk.Len())
	}
}

func TestDeleteNoOpAtMinimumLength(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	single := BitString("1")
	if got := Delete(rng, single); got != single {
		t.Fatalf("expected delete on length-1 string to be a no-op, got=%s", got)
	}
}

func TestEditFullySelectiveNeverWorsensSimilarity(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	reference := Generate(rng, 0.5, 12)
	current := Generate(rng, 0.5, 12)
	for trial := 0; trial < 500; trial++ {
		before := Similarity(current, reference)
		current = Edit(rng, current, reference, 1.0)
		after := Similarity(current, reference)
		if after < before {
			t.Fatalf("trial %d: similarity dropped from %f to %f under full selection", trial, before, after)
		}
	}
}

func TestEditZeroSelectionAlwaysTakesCandidate(t *testing.T) {
	rng := rand.New(rand.NewSource(29))
	reference := BitString("1010")
	current := BitString("0011")
	for trial := 0; trial < 200; trial++ {
		next := Edit(rng, current, reference, 0.0)
		// The only edit that can leave the string untouched is the
		// no-op delete at minimum length.
		if next == current && current.Len() > 1 {
			t.Fatalf("trial %d: expected unconditional candidate acceptance to change the string", trial)
		}
		current = next
		if current.Len() == 0 {
			t.Fatal("string must never become empty")
		}
	}
}

func TestEditDeterministicAcrossStreams(t *testing.T) {
	run := func(seed int64) []BitString {
		rng := rand.New(rand.NewSource(seed))
		reference := Generate(rng, 0.5, 10)
		s := Generate(rng, 0.5, 10)
		out := make([]BitString, 0, 50)
		for i := 0; i < 50; i++ {
			s = Edit(rng, s, reference, 0.5)
			out = append(out, s)
		}
		return out
	}
	a := run(99)
	b := run(99)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("step %d diverged: %s vs %s", i, a[i], b[i])
		}
	}
}
