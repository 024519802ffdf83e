package louds

import "iter"

// rootChildren is the position of the root's first child slot.
const rootChildren = 2

// frame is a pending child slot together with the key length of its parent.
type frame struct {
	pos    int
	keyLen int
}

func hasPrefix(s string, label []byte) bool {
	return len(s) >= len(label) && s[:len(label)] == string(label)
}

// locate returns the node whose path spells query exactly.
func (t *Trie[V]) locate(query string) (int, bool) {
	if query == "" {
		return 0, false
	}
	pos := rootChildren
	for !t.lbs.GetBit(pos) {
		node := t.nodeAt(pos)
		label := t.label(node)
		if hasPrefix(query, label) {
			query = query[len(label):]
			if query == "" {
				return node, true
			}
			pos = t.firstChild(node)
			continue
		}
		// siblings are ordered by their distinct first bytes
		if label[0] >= query[0] {
			return 0, false
		}
		pos++
	}
	return 0, false
}

// ExactMatch returns the values stored under query, or nil when query is not
// a key. A key stored without values yields an empty non-nil slice.
func (t *Trie[V]) ExactMatch(query string) []V {
	node, ok := t.locate(query)
	if !ok {
		return nil
	}
	vs, _ := t.value(node)
	return vs
}

func (t *Trie[V]) ExactMatchBytes(query []byte) []V {
	return t.ExactMatch(string(query))
}

// Contains reports whether query is a stored key.
func (t *Trie[V]) Contains(query string) bool {
	node, ok := t.locate(query)
	return ok && t.terminals.Bit(uint64(node))
}

// prefixSearch finds the shallowest node whose path starts with query. It
// returns the node's slot, the full key spelled up to that node and the node
// number. The node's label may extend past the end of query.
func (t *Trie[V]) prefixSearch(query string) (pos int, key string, node int, ok bool) {
	pos = rootChildren
	rest := query
	for !t.lbs.GetBit(pos) {
		node = t.nodeAt(pos)
		label := t.label(node)
		if hasPrefix(rest, label) {
			rest = rest[len(label):]
			if rest == "" {
				return pos, query, node, true
			}
			pos = t.firstChild(node)
			continue
		}
		if len(label) > len(rest) && string(label[:len(rest)]) == rest {
			return pos, query + string(label[len(rest):]), node, true
		}
		if label[0] >= rest[0] {
			break
		}
		pos++
	}
	return -1, "", 0, false
}

// Predictive yields every key starting with query in byte order. An empty
// query yields all keys. Breaking out of the loop stops the walk.
func (t *Trie[V]) Predictive(query string) iter.Seq2[string, []V] {
	return func(yield func(string, []V) bool) {
		if query == "" {
			t.walk(rootChildren, nil, yield)
			return
		}
		_, key, node, ok := t.prefixSearch(query)
		if !ok {
			return
		}
		if vs, terminal := t.value(node); terminal {
			if !yield(key, vs) {
				return
			}
		}
		t.walk(t.firstChild(node), []byte(key), yield)
	}
}

// walk enumerates the subtree hanging off the sibling group at pos in
// preorder. key holds the path spelled down to the parent of that group.
func (t *Trie[V]) walk(pos int, key []byte, yield func(string, []V) bool) {
	stack := []frame{{pos: pos, keyLen: len(key)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.lbs.GetBit(f.pos) {
			continue
		}

		node := t.nodeAt(f.pos)
		key = append(key[:f.keyLen], t.label(node)...)
		// the sibling is visited after the whole subtree of node
		stack = append(stack,
			frame{pos: f.pos + 1, keyLen: f.keyLen},
			frame{pos: t.firstChild(node), keyLen: len(key)},
		)
		if vs, terminal := t.value(node); terminal {
			if !yield(string(key), vs) {
				return
			}
		}
	}
}

// PredictiveSearch collects Predictive(query).
func (t *Trie[V]) PredictiveSearch(query string) []Match[V] {
	var out []Match[V]
	for key, vs := range t.Predictive(query) {
		out = append(out, Match[V]{Key: key, Values: vs})
	}
	return out
}

// Keys yields every stored key with its values in byte order.
func (t *Trie[V]) Keys() iter.Seq2[string, []V] {
	return t.Predictive("")
}

// commonPrefixes calls emit for every stored key that is a prefix of query,
// shortest first.
func (t *Trie[V]) commonPrefixes(query string, emit func(key string, vs []V)) {
	pos := rootChildren
	consumed := 0
	for consumed < len(query) && !t.lbs.GetBit(pos) {
		node := t.nodeAt(pos)
		label := t.label(node)
		rest := query[consumed:]
		if hasPrefix(rest, label) {
			consumed += len(label)
			if vs, terminal := t.value(node); terminal {
				emit(query[:consumed], vs)
			}
			pos = t.firstChild(node)
			continue
		}
		if label[0] >= rest[0] {
			return
		}
		pos++
	}
}

// CommonPrefixSearch returns the stored keys that are prefixes of query, in
// increasing length. query itself is included when it is a key.
func (t *Trie[V]) CommonPrefixSearch(query string) []Match[V] {
	var out []Match[V]
	t.commonPrefixes(query, func(key string, vs []V) {
		out = append(out, Match[V]{Key: key, Values: vs})
	})
	return out
}

// LongestPrefix returns the longest stored key that is a prefix of query.
func (t *Trie[V]) LongestPrefix(query string) (Match[V], bool) {
	var best Match[V]
	found := false
	t.commonPrefixes(query, func(key string, vs []V) {
		best = Match[V]{Key: key, Values: vs}
		found = true
	})
	return best, found
}
