// Package mmdbwriter builds MaxMind DB (.mmdb) binary files: a bit-indexed
// binary trie over IP prefixes, whose leaves point into a typed data
// section, followed by a metadata record. It implements only the writer
// side of the format; any conforming MaxMind DB reader can consume the
// output.
package mmdbwriter

import (
	"io"
	"time"

	"github.com/pkg/errors"
)

// metadataStartMarker is the fixed 14-byte literal preceding the metadata
// section: 0xAB 0xCD 0xEF followed by the ASCII string "MaxMind.com".
var metadataStartMarker = []byte{
	0xAB, 0xCD, 0xEF, 'M', 'a', 'x', 'M', 'i', 'n', 'd', '.', 'c', 'o', 'm',
}

// Database owns a Trie, a DataStore, and a Metadata record. It is the
// top-level coordinator: callers insert values and nodes in any order,
// then call WriteTo any number of times. Writing does not mutate the
// Database. Record size is recomputed after every insert, not by WriteTo,
// which writes at whatever Metadata.RecordSize holds, so a test can force
// a record size before writing.
//
// Database is not safe for concurrent use. There is no internal locking:
// the caller owns serialization of calls the same way it owns the
// Metadata field, the only publicly mutable sub-resource.
type Database struct {
	trie *Trie
	data *DataStore

	// Metadata is set directly by the caller before WriteTo. NodeCount and
	// RecordSize are overwritten by every Insert* call; WriteTo uses them
	// as they stand, so a value set directly lasts only until the next
	// insert.
	Metadata Metadata
}

// New returns an empty Database. BuildEpoch defaults to the current time;
// override Metadata.BuildEpoch before WriteTo for reproducible output.
func New(databaseType string, ipVersion int) *Database {
	return &Database{
		trie: NewTrie(),
		data: &DataStore{},
		Metadata: Metadata{
			DatabaseType:             databaseType,
			IPVersion:                uint16(ipVersion),
			BinaryFormatMajorVersion: 2,
			BinaryFormatMinorVersion: 0,
			BuildEpoch:               uint64(time.Now().Unix()),
			Description:              map[string]string{},
		},
	}
}

// InsertValue encodes v into the data section and returns a DataRef for
// use with InsertNode. On error the Database should be discarded: a
// partially mutated Database following an encoder error is not guaranteed
// to produce a valid file.
func (d *Database) InsertValue(v Encodable) (DataRef, error) {
	ref, err := d.data.insert(v)
	if err != nil {
		return DataRef{}, err
	}

	d.recompute()

	return ref, nil
}

// InsertNode installs ref at path in the trie. path is typically a Prefix
// but can be any BitPath.
func (d *Database) InsertNode(path BitPath, ref DataRef) {
	d.trie.Insert(path, ref)
	d.recompute()
}

// InsertRange installs ref at every prefix in the minimal CIDR cover of
// [addr, addr+count), as computed by BlocksFromCount. This is sugar over
// BlocksFromCount and InsertNode for callers assigning one value to a
// contiguous run of addresses, matching the loop the format's reference
// ingestion tool hand-wrote inline.
func (d *Database) InsertRange(addr []byte, count uint64, ref DataRef) {
	for _, block := range BlocksFromCount(addr, count) {
		d.trie.Insert(Prefix{Addr: block.Addr, Mask: block.Mask}, ref)
	}

	d.recompute()
}

// recompute derives NodeCount and RecordSize from the current trie and
// data section sizes. It never changes node_count's own value (that only
// grows through Insert), but record_size may widen as either grows.
func (d *Database) recompute() {
	nodeCount := d.trie.NodeCount()
	d.Metadata.NodeCount = uint32(nodeCount)

	maxPtr := nodeCount + d.data.len() + dataSectionSeparatorLen
	d.Metadata.RecordSize = uint16(chooseRecordSize(maxPtr))
}

// WriteTo writes the finished file to w: the trie's record stream at the
// currently chosen record width, a 16-byte zero separator, the data
// section, the metadata start marker, and the metadata itself as a TLV
// map. Writing does not mutate the Database.
func (d *Database) WriteTo(w io.Writer) (int64, error) {
	var total int64

	nb, err := d.trie.WriteRecords(w, int(d.Metadata.RecordSize))
	total += nb
	if err != nil {
		return total, errors.Wrap(err, "mmdbwriter: writing node records")
	}

	var separator [dataSectionSeparatorLen]byte
	n, err := w.Write(separator[:])
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(wrapIO(err), "mmdbwriter: writing data section separator")
	}

	n, err = w.Write(d.data.bytes())
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(wrapIO(err), "mmdbwriter: writing data section")
	}

	n, err = w.Write(metadataStartMarker)
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(wrapIO(err), "mmdbwriter: writing metadata start marker")
	}

	cw := &countingWriter{w: w}
	enc := newEncoder(cw)
	if err := enc.encode(d.Metadata.toMap()); err != nil {
		return total + cw.n, errors.Wrap(err, "mmdbwriter: writing metadata")
	}

	return total + cw.n, nil
}

// countingWriter tracks bytes written through it so WriteTo can report an
// accurate total even though the encoder writes directly to the sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
