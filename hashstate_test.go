package cildiff

import "testing"

func TestHashStateDeterministic(t *testing.T) {
	a := beginHash(FlavorType)
	a.updateString("foo_t")
	h1 := a.finish()

	b := beginHash(FlavorType)
	b.updateString("foo_t")
	h2 := b.finish()

	if h1 != h2 {
		t.Fatalf("expected identical input to produce identical hashes, got %s vs %s", h1.Hex(), h2.Hex())
	}
}

func TestHashStateFlavorTagDistinguishesPayloads(t *testing.T) {
	a := beginHash(FlavorType)
	a.updateString("x")
	h1 := a.finish()

	b := beginHash(FlavorRole)
	b.updateString("x")
	h2 := b.finish()

	if h1 == h2 {
		t.Fatal("expected distinct flavors with the same payload to hash differently")
	}
}

func TestHashStateNulSeparatesConcatenatedStrings(t *testing.T) {
	a := beginHash(FlavorUnknown)
	a.updateString("ab")
	h1 := a.finish()

	b := beginHash(FlavorUnknown)
	b.updateString("a")
	b.updateString("b")
	h2 := b.finish()

	if h1 == h2 {
		t.Fatal("expected \"ab\" and \"a\"+\"b\" to hash differently due to NUL separation")
	}
}

func TestHashStateCopyDivergesIndependently(t *testing.T) {
	hs := beginHash(FlavorAllow)
	hs.updateString("src")
	hs.updateString("tgt")
	snapshot := hs.copy()
	partial := snapshot.finish()

	hs.updateString("extra")
	full := hs.finish()

	if partial == full {
		t.Fatal("expected partial snapshot and continued-absorption full hash to differ")
	}

	// the snapshot must not have been mutated by further absorption on hs.
	again := snapshot.finish()
	if again != partial {
		t.Fatal("copied hash state must not observe writes made after the copy")
	}
}

func TestCompareHashOrdersNullFirst(t *testing.T) {
	var null Hash
	nonNull := beginHash(FlavorType)
	nonNull.updateString("x")
	h := nonNull.finish()

	if !lessHash(null, h) {
		t.Fatal("expected the null hash to sort before a non-null hash")
	}
	if compareHash(h, h) != 0 {
		t.Fatal("expected a hash to compare equal to itself")
	}
}

func TestEmptySetHashIsStable(t *testing.T) {
	s := buildSet(nil)
	if s.fullHash != emptySetHash {
		t.Fatalf("expected an empty set to hash to the well-known sentinel, got %s", s.fullHash.Hex())
	}
}
