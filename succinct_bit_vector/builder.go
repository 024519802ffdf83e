package succinct_bit_vector

import "Lexicon/errutil"

// Builder appends bits one at a time and compiles them into a BitVector.
// Unwritten bits of the current word are kept at 1, so the final word comes
// out padded without extra work.
type Builder struct {
	words  []uint64
	cur    uint64
	used   int
	length int
	built  bool
}

func NewBuilder() *Builder {
	return &Builder{cur: ^uint64(0)}
}

// Add appends one bit.
func (b *Builder) Add(bit bool) {
	errutil.BugOn(b.built, "Add after Build")
	if !bit {
		b.cur &^= uint64(1) << b.used
	}
	b.used++
	b.length++
	if b.used == wordBits {
		b.words = append(b.words, b.cur)
		b.cur = ^uint64(0)
		b.used = 0
	}
}

// AddN appends n copies of bit.
func (b *Builder) AddN(bit bool, n int) {
	for i := 0; i < n; i++ {
		b.Add(bit)
	}
}

// Len returns the number of bits appended so far.
func (b *Builder) Len() int {
	return b.length
}

// Build pads the last word with 1 bits and computes the rank index.
// The builder must not be used afterwards.
func (b *Builder) Build() *BitVector {
	errutil.BugOn(b.built, "Build called twice")
	b.built = true

	words := b.words
	if b.used != 0 {
		words = append(words, b.cur)
	}
	b.words = nil
	return newBitVector(words, b.length)
}
