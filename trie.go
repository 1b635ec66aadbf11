package mmdbwriter

import "io"

// NodeRef is an index into the Trie's node vector. The root is index 0 and
// always exists.
type NodeRef struct {
	index int
}

type targetKind uint8

const (
	targetUnset targetKind = iota
	targetNode
	targetData
)

// target is the tagged choice living at each edge of a Node: a child
// subtree, a terminal data value, or unset ("no data"). Unset is encoded
// on disk as the sentinel pointer value nodeCount, never as a null
// pointer — 0 is a valid node index.
type target struct {
	kind targetKind
	node NodeRef
	data DataRef
}

func (t target) ptr(nodeCount int) int {
	switch t.kind {
	case targetNode:
		return t.node.index
	case targetData:
		return t.data.dataSectionOffset(nodeCount)
	default:
		return nodeCount
	}
}

// Node is a pair of targets indexed by a bit: 0 selects the left child, 1
// the right.
type Node struct {
	children [2]target
}

// Trie is a binary trie keyed by address bits, stored as a contiguous,
// append-only vector of Nodes referencing each other by index. This arena
// layout avoids owning cycles, gives O(1) node allocation, and lets record
// emission iterate in the same order as on-disk node numbering.
type Trie struct {
	nodes []Node
}

// NewTrie returns an empty Trie. An empty trie always has exactly one
// node — the root, index 0 — with both edges unset.
func NewTrie() *Trie {
	return &Trie{nodes: []Node{{}}}
}

// NodeCount returns the number of nodes currently allocated.
func (t *Trie) NodeCount() int {
	return len(t.nodes)
}

// Insert installs ref at the end of path. A zero-length path does nothing,
// since a zero-length prefix is not representable as a node choice.
//
// Inserting overwrites whatever was previously at the final bit's edge,
// including a Node edge pointing at a non-empty subtree: a later,
// coarser-masked insert silently discards any finer prefixes installed
// under that edge. This matches the format's reference writer, which
// resolves the same ambiguous case the same way rather than rejecting it.
func (t *Trie) Insert(path BitPath, ref DataRef) {
	bits := path.Bits()
	length := len(bits)

	if length == 0 {
		return
	}

	cur := 0

	for i := 0; i < length-1; i++ {
		idx := childIndex(bits[i])
		child := t.nodes[cur].children[idx]

		if child.kind == targetNode {
			cur = child.node.index
			continue
		}

		// child is Data or unset: split by allocating a new node whose
		// both children start as copies of child, so the subtree child
		// previously covered remains covered.
		newIdx := len(t.nodes)
		t.nodes = append(t.nodes, Node{children: [2]target{child, child}})
		t.nodes[cur].children[idx] = target{kind: targetNode, node: NodeRef{index: newIdx}}
		cur = newIdx
	}

	lastIdx := childIndex(bits[length-1])
	t.nodes[cur].children[lastIdx] = target{kind: targetData, data: ref}
}

func childIndex(bit bool) int {
	if bit {
		return 1
	}
	return 0
}

// WriteRecords emits one fixed-width record per node, in allocation order,
// at the given record size (24, 28, or 32 bits). It returns the number of
// bytes written.
func (t *Trie) WriteRecords(w io.Writer, recordSize int) (int64, error) {
	recordLen := recordSize / 4
	buf := make([]byte, recordLen)
	nodeCount := len(t.nodes)

	var total int64

	for _, n := range t.nodes {
		left := n.children[0].ptr(nodeCount)
		right := n.children[1].ptr(nodeCount)

		if err := packRecord(buf, left, right, recordSize); err != nil {
			return total, err
		}

		nb, err := w.Write(buf)
		total += int64(nb)

		if err != nil {
			return total, wrapIO(err)
		}
	}

	return total, nil
}

// packRecord packs the pointer pair (left, right) into buf according to
// recordSize. buf must be sized recordSize/4 bytes (6, 7, or 8).
func packRecord(buf []byte, left, right, recordSize int) error {
	switch recordSize {
	case 24:
		if left >= 1<<24 || right >= 1<<24 {
			return ErrRecordOverflow
		}

		buf[0] = byte(left >> 16)
		buf[1] = byte(left >> 8)
		buf[2] = byte(left)
		buf[3] = byte(right >> 16)
		buf[4] = byte(right >> 8)
		buf[5] = byte(right)
	case 28:
		if left >= 1<<28 || right >= 1<<28 {
			return ErrRecordOverflow
		}

		buf[0] = byte(left >> 20)
		buf[1] = byte(left >> 12)
		buf[2] = byte(left >> 4)
		buf[3] = byte((left<<4)&0xF0) | byte((right>>24)&0x0F)
		buf[4] = byte(right >> 16)
		buf[5] = byte(right >> 8)
		buf[6] = byte(right)
	case 32:
		if left > 0xFFFFFFFF || right > 0xFFFFFFFF {
			return ErrRecordOverflow
		}

		buf[0] = byte(left >> 24)
		buf[1] = byte(left >> 16)
		buf[2] = byte(left >> 8)
		buf[3] = byte(left)
		buf[4] = byte(right >> 24)
		buf[5] = byte(right >> 16)
		buf[6] = byte(right >> 8)
		buf[7] = byte(right)
	default:
		return ErrRecordOverflow
	}

	return nil
}

// chooseRecordSize returns the smallest of {24, 28, 32} that admits
// maxPtr without overflow.
func chooseRecordSize(maxPtr int) int {
	switch {
	case maxPtr < 1<<24:
		return 24
	case maxPtr < 1<<28:
		return 28
	default:
		return 32
	}
}
