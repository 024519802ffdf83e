// Package louds implements a static dictionary stored as a LOUDS-encoded
// patricia trie.
//
// The tree shape lives in a single bit vector (lbs): nodes are listed
// breadth-first and every node contributes one 0 per child followed by a
// terminating 1. The root is seeded with "01", so node numbers start at 1 for
// the root and at 2 for its first child. For the slot at position p:
//
//	node number      = lbs.Rank0(p + 1)
//	first child slot = lbs.Select1(node number)
//
// Chains of single-child, non-terminal nodes are merged into one edge whose
// label is kept in a flat tail store. tailBits has one bit per tail byte and
// a 1 at every label start. Terminal nodes are marked in an rsdic dictionary
// and the rank of the marker is the node's slot in the values array.
package louds

import (
	"Lexicon/errutil"
	sbv "Lexicon/succinct_bit_vector"
	"Lexicon/utils"
	"fmt"
	"strings"
	"unsafe"

	"github.com/hillbig/rsdic"
)

const maxDumpNodes = 256

// Match is one key found by a search together with its values.
type Match[V any] struct {
	Key    string
	Values []V
}

// Trie is immutable once built or loaded and is safe for concurrent readers.
type Trie[V any] struct {
	lbs       *sbv.BitVector
	tailKeys  []byte
	tailBits  *sbv.BitVector
	terminals *rsdic.RSDic
	values    [][]V
}

// Len returns the number of stored keys.
func (t *Trie[V]) Len() int {
	return len(t.values)
}

// NumNodes returns the number of LOUDS nodes, root included.
func (t *Trie[V]) NumNodes() int {
	return t.lbs.Zeros()
}

// nodeAt returns the node number of the child slot at pos.
func (t *Trie[V]) nodeAt(pos int) int {
	return t.lbs.Rank0(pos + 1)
}

// firstChild returns the position of the first child slot of node.
func (t *Trie[V]) firstChild(node int) int {
	return t.lbs.Select1(node)
}

// label returns the edge label of a non-root node.
func (t *Trie[V]) label(node int) []byte {
	errutil.BugOn(node < 2, "node %d has no label", node)
	start := t.tailBits.Select1(node-1) - 1
	end := t.tailBits.Select1(node) - 1
	if end < 0 || end > len(t.tailKeys) {
		end = len(t.tailKeys)
	}
	return t.tailKeys[start:end]
}

// value returns the values of node and whether node terminates a key.
func (t *Trie[V]) value(node int) ([]V, bool) {
	if !t.terminals.Bit(uint64(node)) {
		return nil, false
	}
	return t.values[t.terminals.Rank(uint64(node), true)], true
}

// ByteSize returns the resident size estimate in bytes.
func (t *Trie[V]) ByteSize() int {
	if t == nil {
		return 0
	}
	return int(unsafe.Sizeof(*t)) + t.lbs.ByteSize() + len(t.tailKeys) + t.tailBits.ByteSize() +
		t.terminals.AllocSize() + t.valuesSize()
}

func (t *Trie[V]) valuesSize() int {
	var zero V
	size := len(t.values) * int(unsafe.Sizeof(t.values))
	for _, vs := range t.values {
		size += len(vs) * int(unsafe.Sizeof(zero))
	}
	return size
}

// MemDetailed returns a detailed memory usage report for the trie.
func (t *Trie[V]) MemDetailed() utils.MemReport {
	if t == nil {
		return utils.MemReport{Name: "louds", TotalBytes: 0}
	}

	return utils.MemReport{
		Name:       "louds",
		TotalBytes: t.ByteSize(),
		Children: []utils.MemReport{
			{Name: "header", TotalBytes: int(unsafe.Sizeof(*t))},
			t.lbs.MemDetailed("lbs"),
			{Name: "tail_keys", TotalBytes: len(t.tailKeys)},
			t.tailBits.MemDetailed("tail_bits"),
			{Name: "terminals", TotalBytes: t.terminals.AllocSize()},
			{Name: "values", TotalBytes: t.valuesSize()},
		},
	}
}

// String dumps the encoded arrays. Per-node details are only printed for
// small tries.
func (t *Trie[V]) String() string {
	var sb strings.Builder
	sb.WriteString("LOUDSTrie:\n")
	sb.WriteString(fmt.Sprintf("| keys: %d\n", t.Len()))
	sb.WriteString(fmt.Sprintf("| nodes: %d\n", t.NumNodes()))
	sb.WriteString(fmt.Sprintf("| lbs bits: %d\n", t.lbs.Len()))
	sb.WriteString(fmt.Sprintf("| tail bytes: %d\n", len(t.tailKeys)))
	if t.NumNodes() > maxDumpNodes {
		return sb.String()
	}

	sb.WriteString("| lbs: ")
	for i := 0; i < t.lbs.Len(); i++ {
		if t.lbs.GetBit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	sb.WriteByte('\n')
	for node := 2; node <= t.NumNodes(); node++ {
		vs, terminal := t.value(node)
		if terminal {
			sb.WriteString(fmt.Sprintf("|   %d %q -> %v\n", node, t.label(node), vs))
		} else {
			sb.WriteString(fmt.Sprintf("|   %d %q\n", node, t.label(node)))
		}
	}
	return sb.String()
}
