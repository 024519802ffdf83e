// Package basetrie builds the ordinary byte trie that the LOUDS encoder
// linearizes. Nodes live in an arena and are addressed by NodeID.
package basetrie

import (
	"Lexicon/errutil"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/slices"
)

// NoValue marks a node that does not terminate a key.
const NoValue int32 = -1

var (
	ErrEmptyKey     = errors.New("empty key")
	ErrDuplicateKey = errors.New("duplicate key")
)

type DuplicatePolicy int

const (
	// RejectDuplicates fails the build on the second occurrence of a key.
	RejectDuplicates DuplicatePolicy = iota
	// MergeDuplicates concatenates the value lists in input order.
	MergeDuplicates
)

func (p DuplicatePolicy) String() string {
	switch p {
	case RejectDuplicates:
		return "reject"
	case MergeDuplicates:
		return "merge"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

type NodeID int32

// Entry is one key with its value set.
type Entry[V any] struct {
	Key    string
	Values []V
}

type Node struct {
	Label    byte
	Leaf     bool
	Index    int32
	children []NodeID
}

// Trie is the intermediate byte trie. Root carries no label and no value.
type Trie[V any] struct {
	nodes  []Node
	values [][]V
}

// New builds the trie from a key -> values mapping.
func New[V any](m map[string][]V) (*Trie[V], error) {
	entries := make([]Entry[V], 0, len(m))
	for k, vs := range m {
		entries = append(entries, Entry[V]{Key: k, Values: vs})
	}
	return FromEntries(entries, RejectDuplicates)
}

// FromEntries builds the trie from a list of entries, resolving repeated keys
// according to policy.
func FromEntries[V any](entries []Entry[V], policy DuplicatePolicy) (*Trie[V], error) {
	byKey := make(map[string][]V, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			return nil, ErrEmptyKey
		}
		existing, seen := byKey[e.Key]
		if !seen {
			byKey[e.Key] = nonNil(e.Values)
			continue
		}
		if policy != MergeDuplicates {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		merged := make([]V, 0, len(existing)+len(e.Values))
		merged = append(merged, existing...)
		byKey[e.Key] = append(merged, e.Values...)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	// string comparison in Go is byte-wise
	slices.Sort(keys)

	t := &Trie[V]{
		nodes:  []Node{{Index: NoValue}},
		values: make([][]V, 0, len(keys)),
	}
	for _, k := range keys {
		t.insert(k, int32(len(t.values)))
		t.values = append(t.values, byKey[k])
	}
	return t, nil
}

func nonNil[V any](vs []V) []V {
	if vs == nil {
		return []V{}
	}
	return vs
}

// insert adds key assuming every previously inserted key is smaller. Under
// that order the only child that can share a prefix with key is the last one.
func (t *Trie[V]) insert(key string, index int32) {
	cur := NodeID(0)
	for i := 0; i < len(key); i++ {
		c := key[i]
		children := t.nodes[cur].children
		if n := len(children); n > 0 && t.nodes[children[n-1]].Label == c {
			cur = children[n-1]
			continue
		}
		errutil.BugOn(len(children) > 0 && t.nodes[children[len(children)-1]].Label > c, "keys should be sorted")

		id := NodeID(len(t.nodes))
		t.nodes = append(t.nodes, Node{Label: c, Index: NoValue})
		t.nodes[cur].children = append(t.nodes[cur].children, id)
		cur = id
	}
	errutil.BugOn(t.nodes[cur].Leaf, "key %q inserted twice", key)
	t.nodes[cur].Leaf = true
	t.nodes[cur].Index = index
}

func (t *Trie[V]) Root() NodeID {
	return 0
}

func (t *Trie[V]) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Children returns the children of id ordered by label.
func (t *Trie[V]) Children(id NodeID) []NodeID {
	return t.nodes[id].children
}

// Child returns the child of id labelled c.
func (t *Trie[V]) Child(id NodeID, c byte) (NodeID, bool) {
	children := t.nodes[id].children
	i := sort.Search(len(children), func(i int) bool {
		return t.nodes[children[i]].Label >= c
	})
	if i < len(children) && t.nodes[children[i]].Label == c {
		return children[i], true
	}
	return 0, false
}

// NumNodes returns the number of nodes including the root.
func (t *Trie[V]) NumNodes() int {
	return len(t.nodes)
}

// Len returns the number of keys.
func (t *Trie[V]) Len() int {
	return len(t.values)
}

// Values returns the value sets indexed by Node.Index, in key order.
func (t *Trie[V]) Values() [][]V {
	return t.values
}

// Search walks the trie byte by byte and returns the values of key.
func (t *Trie[V]) Search(key string) []V {
	cur := t.Root()
	for i := 0; i < len(key); i++ {
		next, ok := t.Child(cur, key[i])
		if !ok {
			return nil
		}
		cur = next
	}
	node := t.nodes[cur]
	if !node.Leaf || node.Index == NoValue {
		return nil
	}
	return t.values[node.Index]
}
