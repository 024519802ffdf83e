package louds

import (
	"Lexicon/errutil"
	sbv "Lexicon/succinct_bit_vector"
	"Lexicon/trie/basetrie"

	"github.com/hillbig/rsdic"
	"github.com/sirupsen/logrus"
)

// Build compiles a key -> values mapping into a LOUDS trie.
func Build[V any](m map[string][]V, opts ...Option) (*Trie[V], error) {
	bt, err := basetrie.New(m)
	if err != nil {
		return nil, err
	}
	return Encode(bt, opts...), nil
}

// Encode linearizes bt breadth-first. Every chain of single-child,
// non-terminal nodes becomes one edge.
func Encode[V any](bt *basetrie.Trie[V], opts ...Option) *Trie[V] {
	o := newOptions(opts)

	lbs := sbv.NewBuilder()
	tailBits := sbv.NewBuilder()
	terminals := rsdic.New()
	var tailKeys []byte
	values := make([][]V, 0, bt.Len())

	// "01" seed: node 0 is virtual and node 1 is the root, neither has a label
	lbs.Add(false)
	lbs.Add(true)
	terminals.PushBack(false)
	terminals.PushBack(false)

	queue := []basetrie.NodeID{bt.Root()}
	for head := 0; head < len(queue); head++ {
		for _, child := range bt.Children(queue[head]) {
			start := len(tailKeys)
			cur := child
			tailKeys = append(tailKeys, bt.Node(cur).Label)
			for !bt.Node(cur).Leaf && len(bt.Children(cur)) == 1 {
				cur = bt.Children(cur)[0]
				tailKeys = append(tailKeys, bt.Node(cur).Label)
			}

			lbs.Add(false)
			tailBits.Add(true)
			tailBits.AddN(false, len(tailKeys)-start-1)

			end := bt.Node(cur)
			terminals.PushBack(end.Leaf)
			if end.Leaf {
				values = append(values, bt.Values()[end.Index])
			}
			queue = append(queue, cur)
		}
		lbs.Add(true)
	}

	t := &Trie[V]{
		lbs:       lbs.Build(),
		tailKeys:  tailKeys,
		tailBits:  tailBits.Build(),
		terminals: terminals,
		values:    values,
	}
	errutil.BugOnNotEq(t.Len(), bt.Len())
	errutil.BugOnNotEq(t.NumNodes(), len(queue))

	o.logger.WithFields(logrus.Fields{
		"keys":       t.Len(),
		"nodes":      t.NumNodes(),
		"lbs_bits":   t.lbs.Len(),
		"tail_bytes": len(t.tailKeys),
		"bytes":      t.ByteSize(),
	}).Debug("louds trie built")
	return t
}

// Builder collects key/value pairs and compiles them into a Trie.
type Builder[V any] struct {
	opts    []Option
	entries []basetrie.Entry[V]
}

func NewBuilder[V any](opts ...Option) *Builder[V] {
	return &Builder[V]{opts: opts}
}

// Add records values under key. Repeated keys are resolved by Build according
// to the configured duplicate policy.
func (b *Builder[V]) Add(key string, values ...V) error {
	if key == "" {
		return basetrie.ErrEmptyKey
	}
	b.entries = append(b.entries, basetrie.Entry[V]{Key: key, Values: values})
	return nil
}

// Len returns the number of Add calls so far.
func (b *Builder[V]) Len() int {
	return len(b.entries)
}

func (b *Builder[V]) Build() (*Trie[V], error) {
	o := newOptions(b.opts)
	bt, err := basetrie.FromEntries(b.entries, o.duplicates)
	if err != nil {
		return nil, err
	}
	return Encode(bt, b.opts...), nil
}
