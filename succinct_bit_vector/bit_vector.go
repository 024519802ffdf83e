package succinct_bit_vector

import (
	"Lexicon/errutil"
	"Lexicon/utils"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"unsafe"
)

const (
	wordBits = 64

	// BigBlockBits and SmallBlockBits are the sizes of the two rank index
	// levels. A small block is one storage word.
	BigBlockBits   = 1024
	SmallBlockBits = wordBits

	smallPerBig = BigBlockBits / SmallBlockBits

	maxDumpBits = 1024
)

var ErrCorrupt = errors.New("corrupt bit vector")

// BitVector is an immutable bit sequence with a two-level rank index.
//
// Bits are stored LSB first in 64-bit words. Storage is padded with 1 bits up
// to a whole word, and the padded size is the domain of Rank and Select.
// bigBlock[i] holds the number of ones before big block i, and smallBlock[w]
// holds the number of ones between the start of w's big block and word w.
type BitVector struct {
	words      []uint64
	length     int
	ones       int
	bigBlock   []uint64
	smallBlock []uint16
}

func newBitVector(words []uint64, length int) *BitVector {
	nBig := (len(words) + smallPerBig - 1) / smallPerBig
	bv := &BitVector{
		words:      words,
		length:     length,
		bigBlock:   make([]uint64, nBig+1),
		smallBlock: make([]uint16, len(words)),
	}

	var total uint64
	var inBlock uint16
	for i, w := range words {
		if i%smallPerBig == 0 {
			bv.bigBlock[i/smallPerBig] = total
			inBlock = 0
		}
		bv.smallBlock[i] = inBlock
		c := uint16(bits.OnesCount64(w))
		inBlock += c
		total += uint64(c)
	}
	bv.bigBlock[nBig] = total
	bv.ones = int(total)
	return bv
}

// FromWords rebuilds a BitVector from the raw words of a previously built
// vector. The slice is owned by the result afterwards.
func FromWords(words []uint64, length int) (*BitVector, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrCorrupt, length)
	}
	need := (length + wordBits - 1) / wordBits
	if len(words) != need {
		return nil, fmt.Errorf("%w: %d words for %d bits, want %d", ErrCorrupt, len(words), length, need)
	}
	if tail := length % wordBits; tail != 0 {
		padMask := ^uint64(0) << tail
		if words[need-1]&padMask != padMask {
			return nil, fmt.Errorf("%w: padding bits are not set", ErrCorrupt)
		}
	}
	return newBitVector(words, length), nil
}

// FromBinary builds a vector from a string of '0' and '1' characters.
func FromBinary(text string) *BitVector {
	b := NewBuilder()
	for _, r := range text {
		errutil.BugOn(r != '0' && r != '1', "invalid string format, %q", text)
		b.Add(r == '1')
	}
	return b.Build()
}

// Len returns the number of appended bits, excluding padding.
func (bv *BitVector) Len() int {
	return bv.length
}

// Size returns the padded number of bits.
func (bv *BitVector) Size() int {
	return len(bv.words) * wordBits
}

// Ones returns the number of set bits, padding included.
func (bv *BitVector) Ones() int {
	return bv.ones
}

func (bv *BitVector) Zeros() int {
	return bv.Size() - bv.ones
}

// Words exposes the backing storage. Callers must not modify it.
func (bv *BitVector) Words() []uint64 {
	return bv.words
}

// GetBit returns the bit at pos. Positions outside [0, Size()) read as 1,
// the padding value, so that scans for a terminating 1 always stop.
func (bv *BitVector) GetBit(pos int) bool {
	if pos < 0 || pos >= bv.Size() {
		return true
	}
	return bv.words[pos/wordBits]&(uint64(1)<<(pos%wordBits)) != 0
}

// Rank1 returns the number of set bits in [0, pos), or -1 if pos is outside
// [0, Size()].
func (bv *BitVector) Rank1(pos int) int {
	if pos < 0 || pos > bv.Size() {
		return -1
	}
	if pos == bv.Size() {
		return bv.ones
	}
	w := pos / wordBits
	mask := uint64(1)<<(pos%wordBits) - 1
	return int(bv.bigBlock[pos/BigBlockBits]) + int(bv.smallBlock[w]) + bits.OnesCount64(bv.words[w]&mask)
}

// Rank0 returns the number of unset bits in [0, pos), or -1 if pos is outside
// [0, Size()].
func (bv *BitVector) Rank0(pos int) int {
	r := bv.Rank1(pos)
	if r < 0 {
		return -1
	}
	return pos - r
}

// Select1 returns the position right after the k-th set bit (1-indexed),
// which is the smallest p with Rank1(p) == k. It returns -1 when k is 0 or
// exceeds Ones().
func (bv *BitVector) Select1(k int) int {
	if k <= 0 || k > bv.ones {
		return -1
	}
	remain := uint64(k)

	// last big block with fewer than k ones before it
	left, right := 0, len(bv.bigBlock)-1
	for right-left > 1 {
		mid := (left + right) / 2
		if bv.bigBlock[mid] < remain {
			left = mid
		} else {
			right = mid
		}
	}
	remain -= bv.bigBlock[left]

	lo := left * smallPerBig
	hi := min(lo+smallPerBig, len(bv.words))
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if uint64(bv.smallBlock[mid]) < remain {
			lo = mid
		} else {
			hi = mid
		}
	}
	remain -= uint64(bv.smallBlock[lo])

	return lo*wordBits + selectInWord(bv.words[lo], int(remain)) + 1
}

// Select0 is the counterpart of Select1 for unset bits.
func (bv *BitVector) Select0(k int) int {
	if k <= 0 || k > bv.Zeros() {
		return -1
	}
	remain := uint64(k)

	zerosBefore := func(block int) uint64 {
		start := min(block*BigBlockBits, bv.Size())
		return uint64(start) - bv.bigBlock[block]
	}

	left, right := 0, len(bv.bigBlock)-1
	for right-left > 1 {
		mid := (left + right) / 2
		if zerosBefore(mid) < remain {
			left = mid
		} else {
			right = mid
		}
	}
	remain -= zerosBefore(left)

	base := left * smallPerBig
	lo := base
	hi := min(base+smallPerBig, len(bv.words))
	zerosInBlock := func(w int) uint64 {
		return uint64((w-base)*wordBits) - uint64(bv.smallBlock[w])
	}
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if zerosInBlock(mid) < remain {
			lo = mid
		} else {
			hi = mid
		}
	}
	remain -= zerosInBlock(lo)

	return lo*wordBits + selectInWord(^bv.words[lo], int(remain)) + 1
}

// selectInWord returns the offset of the k-th set bit of w (1-indexed).
func selectInWord(w uint64, k int) int {
	errutil.BugOn(k <= 0 || k > bits.OnesCount64(w), "select %d in word %064b", k, w)
	for ; k > 1; k-- {
		w &= w - 1
	}
	return bits.TrailingZeros64(w)
}

// ByteSize returns the resident size estimate in bytes.
func (bv *BitVector) ByteSize() int {
	if bv == nil {
		return 0
	}
	return int(unsafe.Sizeof(*bv)) + len(bv.words)*8 + len(bv.bigBlock)*8 + len(bv.smallBlock)*2
}

// MemDetailed returns a detailed memory usage report for the vector.
func (bv *BitVector) MemDetailed(name string) utils.MemReport {
	if bv == nil {
		return utils.MemReport{Name: name}
	}
	return utils.MemReport{
		Name:       name,
		TotalBytes: bv.ByteSize(),
		Children: []utils.MemReport{
			{Name: "header", TotalBytes: int(unsafe.Sizeof(*bv))},
			{Name: "words", TotalBytes: len(bv.words) * 8},
			{Name: "big_blocks", TotalBytes: len(bv.bigBlock) * 8},
			{Name: "small_blocks", TotalBytes: len(bv.smallBlock) * 2},
		},
	}
}

// String dumps the vector and its rank index. Bit contents are only printed
// for small vectors.
func (bv *BitVector) String() string {
	var sb strings.Builder
	sb.WriteString("BitVector:\n")
	sb.WriteString(fmt.Sprintf("| len: %d, size: %d, ones: %d\n", bv.length, bv.Size(), bv.ones))
	sb.WriteString(fmt.Sprintf("| big blocks: %d, small blocks: %d\n", len(bv.bigBlock), len(bv.smallBlock)))
	if bv.Size() > maxDumpBits {
		return sb.String()
	}

	sb.WriteString("| bits:\n")
	for i := range bv.words {
		sb.WriteString("|   ")
		for j := 0; j < wordBits; j++ {
			if bv.GetBit(i*wordBits + j) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(fmt.Sprintf("| bigBlock: %v\n", bv.bigBlock))
	sb.WriteString(fmt.Sprintf("| smallBlock: %v\n", bv.smallBlock))
	return sb.String()
}
