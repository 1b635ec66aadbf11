package mmdbwriter

import (
	"bytes"
	"testing"
)

func TestDataStoreInsertReturnsPreInsertOffset(t *testing.T) {
	ds := &DataStore{}

	ref1, err := ds.insert(String("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ref1.index != 0 {
		t.Fatalf("first insert should be at offset 0, got %d", ref1.index)
	}

	firstLen := ds.len()

	ref2, err := ds.insert(String("bb"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ref2.index != firstLen {
		t.Fatalf("second insert offset should equal prior length %d, got %d", firstLen, ref2.index)
	}
}

func TestDataStoreIsAppendOnly(t *testing.T) {
	ds := &DataStore{}

	ref, err := ds.insert(Uint32(7))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := append([]byte(nil), ds.bytes()...)

	if _, err := ds.insert(Uint32(8)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Bytes already written at ref's offset must not move or change.
	after := ds.bytes()[ref.index : ref.index+len(before)]

	if !bytes.Equal(before, after) {
		t.Fatalf("earlier bytes shifted: before %x, after %x", before, after)
	}
}

func TestDataRefDataSectionOffset(t *testing.T) {
	ref := DataRef{index: 10}

	got := ref.dataSectionOffset(100)
	want := 100 + dataSectionSeparatorLen + 10

	if got != want {
		t.Fatalf("got %d, want %d", got, want)
	}
}
