package mmdbwriter

import "bytes"

// DataRef is an opaque handle into the data section's byte buffer, produced
// by DataStore.insert and consumed by Trie.Insert. It remains valid for the
// lifetime of the enclosing Database: the data section is append-only, so
// offsets never shift once issued.
type DataRef struct {
	index int
}

// dataSectionOffset returns the on-disk pointer value readers use for this
// ref: the final node count, plus the 16-byte separator, plus the ref's
// byte offset into the data section.
func (d DataRef) dataSectionOffset(nodeCount int) int {
	return nodeCount + dataSectionSeparatorLen + d.index
}

// dataSectionSeparatorLen is the width of the mandatory zero block between
// the node records and the data section.
const dataSectionSeparatorLen = 16

// DataStore owns the value section's byte buffer. It is append-only: once a
// value is encoded, its bytes never move and its DataRef stays valid for
// the life of the Database. The store does not deduplicate values — unlike
// a content-addressed blob store, identical values written twice occupy
// the data section twice. Callers that want interning do it themselves
// before calling insert.
type DataStore struct {
	buf bytes.Buffer
}

// len returns the current size of the data section in bytes.
func (ds *DataStore) len() int {
	return ds.buf.Len()
}

// insert encodes value via the ValueEncoder and appends it to the data
// section, returning a DataRef pointing at its first byte. On encoder
// error, any partial bytes already written remain in the buffer — the
// caller's Database is expected to be treated as poisoned after an insert
// error, per the package's error-handling policy.
func (ds *DataStore) insert(value Encodable) (DataRef, error) {
	ref := DataRef{index: ds.buf.Len()}

	enc := newEncoder(&ds.buf)
	if err := enc.encode(value); err != nil {
		return DataRef{}, err
	}

	return ref, nil
}

// bytes returns the data section's contents. The returned slice aliases
// the store's internal buffer and must not be mutated by the caller.
func (ds *DataStore) bytes() []byte {
	return ds.buf.Bytes()
}
