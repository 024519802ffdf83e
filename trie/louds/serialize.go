package louds

import (
	"Lexicon/codec"
	"Lexicon/errutil"
	sbv "Lexicon/succinct_bit_vector"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/hillbig/rsdic"
	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"
)

const (
	// magic is "LDT1" read as a little-endian uint32.
	magic   uint32 = 0x3154444c
	version uint32 = 2

	checksumSize = 8
)

var (
	ErrCorrupt            = errors.New("corrupt louds trie")
	ErrBadMagic           = fmt.Errorf("%w: bad magic", ErrCorrupt)
	ErrUnsupportedVersion = fmt.Errorf("%w: unsupported version", ErrCorrupt)
	ErrChecksum           = fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	ErrCodecMismatch      = fmt.Errorf("%w: codec mismatch", ErrCorrupt)

	ErrTooLarge = errors.New("section too large")
)

// Serialize encodes the trie. Values are written with c, and the same codec
// must be passed to Deserialize.
func (t *Trie[V]) Serialize(c codec.Codec) ([]byte, error) {
	values, err := c.Marshal(t.values)
	if err != nil {
		return nil, fmt.Errorf("marshal values with %s: %w", c.Name(), err)
	}
	terminals := terminalVector(t.terminals)

	name := c.Name()
	if err := errutil.First(
		checkLen("codec name", len(name), math.MaxUint16),
		checkLen("lbs words", len(t.lbs.Words()), math.MaxUint32),
		checkLen("tail keys", len(t.tailKeys), math.MaxUint32),
		checkLen("tail bit words", len(t.tailBits.Words()), math.MaxUint32),
		checkLen("terminal words", len(terminals.Words()), math.MaxUint32),
		checkLen("values", len(values), math.MaxUint32),
	); err != nil {
		return nil, err
	}

	buf := make([]byte, 0, t.ByteSize()+len(values))
	buf = binary.LittleEndian.AppendUint32(buf, magic)
	buf = binary.LittleEndian.AppendUint32(buf, version)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(name)))
	buf = append(buf, name...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(t.values)))

	buf = appendBitVector(buf, t.lbs)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.tailKeys)))
	buf = append(buf, t.tailKeys...)
	buf = appendBitVector(buf, t.tailBits)
	buf = appendBitVector(buf, terminals)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(values)))
	buf = append(buf, values...)

	return binary.LittleEndian.AppendUint64(buf, xxh3.Hash(buf)), nil
}

// checkLen fails when a section of n entries does not fit its length field.
func checkLen(section string, n int, limit uint64) error {
	if n < 0 || uint64(n) > limit {
		return fmt.Errorf("%w: %s has %d entries, limit %d", ErrTooLarge, section, n, limit)
	}
	return nil
}

func appendBitVector(buf []byte, bv *sbv.BitVector) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(bv.Len()))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(bv.Words())))
	for _, w := range bv.Words() {
		buf = binary.LittleEndian.AppendUint64(buf, w)
	}
	return buf
}

// terminalVector copies the terminal markers into raw words for storage.
func terminalVector(rs *rsdic.RSDic) *sbv.BitVector {
	b := sbv.NewBuilder()
	for i := uint64(0); i < rs.Num(); i++ {
		b.Add(rs.Bit(i))
	}
	return b.Build()
}

func newTerminals(flags *sbv.BitVector) *rsdic.RSDic {
	rs := rsdic.New()
	for i := 0; i < flags.Len(); i++ {
		rs.PushBack(flags.GetBit(i))
	}
	return rs
}

// Deserialize decodes data produced by Serialize. Any inconsistency is
// reported as an error wrapping ErrCorrupt.
func Deserialize[V any](data []byte, c codec.Codec, opts ...Option) (*Trie[V], error) {
	o := newOptions(opts)
	if len(data) < checksumSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(data))
	}
	body := data[:len(data)-checksumSize]
	if xxh3.Hash(body) != binary.LittleEndian.Uint64(data[len(body):]) {
		return nil, ErrChecksum
	}

	r := bytes.NewReader(body)
	var header struct {
		Magic   uint32
		Version uint32
		NameLen uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	if header.Magic != magic {
		return nil, fmt.Errorf("%w: %#x", ErrBadMagic, header.Magic)
	}
	if header.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	name, err := readBytes(r, int(header.NameLen))
	if err != nil {
		return nil, fmt.Errorf("codec name: %w", err)
	}
	if string(name) != c.Name() {
		return nil, fmt.Errorf("%w: stored %q, got %q", ErrCodecMismatch, name, c.Name())
	}
	var numKeys uint64
	if err := binary.Read(r, binary.LittleEndian, &numKeys); err != nil {
		return nil, fmt.Errorf("%w: key count: %v", ErrCorrupt, err)
	}

	t := &Trie[V]{}
	if t.lbs, err = readBitVector(r); err != nil {
		return nil, fmt.Errorf("lbs: %w", err)
	}
	if t.tailKeys, err = readSection(r); err != nil {
		return nil, fmt.Errorf("tail keys: %w", err)
	}
	if t.tailBits, err = readBitVector(r); err != nil {
		return nil, fmt.Errorf("tail bits: %w", err)
	}

	terminals, err := readBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("terminals: %w", err)
	}

	values, err := readSection(r)
	if err != nil {
		return nil, fmt.Errorf("values: %w", err)
	}
	if err := c.Unmarshal(values, &t.values); err != nil {
		return nil, fmt.Errorf("%w: values: %v", ErrCorrupt, err)
	}
	for i := range t.values {
		if t.values[i] == nil {
			t.values[i] = []V{}
		}
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, r.Len())
	}
	if err := t.validate(numKeys, terminals); err != nil {
		return nil, err
	}
	t.terminals = newTerminals(terminals)

	o.logger.WithFields(logrus.Fields{
		"keys":  t.Len(),
		"nodes": t.NumNodes(),
		"codec": c.Name(),
		"bytes": len(data),
	}).Debug("louds trie loaded")
	return t, nil
}

func readBytes(r *bytes.Reader, n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, fmt.Errorf("%w: section of %d bytes, %d left", ErrCorrupt, n, r.Len())
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return out, nil
}

func readSection(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("%w: section length: %v", ErrCorrupt, err)
	}
	return readBytes(r, int(n))
}

func readBitVector(r *bytes.Reader) (*sbv.BitVector, error) {
	var length uint64
	var numWords uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, fmt.Errorf("%w: length: %v", ErrCorrupt, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &numWords); err != nil {
		return nil, fmt.Errorf("%w: word count: %v", ErrCorrupt, err)
	}
	if int(numWords) > r.Len()/8 || length > uint64(numWords)*64 {
		return nil, fmt.Errorf("%w: %d words for %d bits, %d bytes left", ErrCorrupt, numWords, length, r.Len())
	}
	words := make([]uint64, numWords)
	if err := binary.Read(r, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("%w: words: %v", ErrCorrupt, err)
	}
	bv, err := sbv.FromWords(words, int(length))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return bv, nil
}

// validate checks that the decoded arrays describe one consistent trie, so
// that queries on a loaded trie stay in bounds and terminate.
func (t *Trie[V]) validate(numKeys uint64, terminals *sbv.BitVector) error {
	nodes := t.lbs.Zeros()
	switch {
	case t.lbs.Len() != 2*nodes+1 || t.lbs.GetBit(0) || !t.lbs.GetBit(1):
		return fmt.Errorf("%w: lbs of %d bits holds %d nodes", ErrCorrupt, t.lbs.Len(), nodes)
	case t.tailBits.Len() != len(t.tailKeys):
		return fmt.Errorf("%w: %d tail bits for %d tail bytes", ErrCorrupt, t.tailBits.Len(), len(t.tailKeys))
	case t.tailBits.Rank1(t.tailBits.Len()) != nodes-1:
		return fmt.Errorf("%w: %d labels for %d nodes", ErrCorrupt, t.tailBits.Rank1(t.tailBits.Len()), nodes)
	case len(t.tailKeys) > 0 && !t.tailBits.GetBit(0):
		return fmt.Errorf("%w: tail store does not start with a label", ErrCorrupt)
	case terminals.Len() != nodes+1:
		return fmt.Errorf("%w: %d terminal flags for %d nodes", ErrCorrupt, terminals.Len(), nodes)
	case terminals.GetBit(0) || terminals.GetBit(1):
		return fmt.Errorf("%w: root marked terminal", ErrCorrupt)
	case terminals.Rank1(terminals.Len()) != len(t.values):
		return fmt.Errorf("%w: %d terminals for %d value sets", ErrCorrupt, terminals.Rank1(terminals.Len()), len(t.values))
	case uint64(len(t.values)) != numKeys:
		return fmt.Errorf("%w: %d value sets for %d keys", ErrCorrupt, len(t.values), numKeys)
	}
	return t.checkChildOrder()
}

// checkChildOrder verifies that every child slot is numbered after the node
// whose group holds it. Without this a malformed lbs can point a node back at
// an ancestor.
func (t *Trie[V]) checkChildOrder() error {
	ones, zeros := 0, 0
	for p := 0; p < t.lbs.Len(); p++ {
		if t.lbs.GetBit(p) {
			ones++
			continue
		}
		zeros++
		if ones >= zeros {
			return fmt.Errorf("%w: node %d at bit %d belongs to node %d", ErrCorrupt, zeros, p, ones)
		}
	}
	return nil
}

// Save writes the serialized trie to w.
func (t *Trie[V]) Save(w io.Writer, c codec.Codec) (int64, error) {
	data, err := t.Serialize(c)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// Load reads a serialized trie from r until EOF.
func Load[V any](r io.Reader, c codec.Codec, opts ...Option) (*Trie[V], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Deserialize[V](data, c, opts...)
}

func SaveFile[V any](path string, t *Trie[V], c codec.Codec) error {
	data, err := t.Serialize(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadFile[V any](path string, c codec.Codec, opts ...Option) (*Trie[V], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Deserialize[V](data, c, opts...)
}
