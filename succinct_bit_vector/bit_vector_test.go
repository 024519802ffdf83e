package succinct_bit_vector

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/hillbig/rsdic"
	"github.com/stretchr/testify/require"
)

func randomBits(n int, density float64, seed int64) []bool {
	r := rand.New(rand.NewSource(seed))
	out := make([]bool, n)
	for i := range out {
		out[i] = r.Float64() < density
	}
	return out
}

func buildFrom(bitsIn []bool) *BitVector {
	b := NewBuilder()
	for _, bit := range bitsIn {
		b.Add(bit)
	}
	return b.Build()
}

func TestBitVectorSmall(t *testing.T) {
	t.Parallel()
	bitsIn := []bool{true, false, true, true, false, false, true, false, true, false}
	bv := buildFrom(bitsIn)

	require.Equal(t, 10, bv.Len())
	require.Equal(t, 64, bv.Size())
	// 5 ones in the data and 54 padding ones
	require.Equal(t, 59, bv.Ones())
	require.Equal(t, 5, bv.Zeros())

	for i, expected := range bitsIn {
		require.Equal(t, expected, bv.GetBit(i), "GetBit(%d)", i)
	}
	for i := 10; i < 70; i++ {
		require.True(t, bv.GetBit(i), "padding bit %d", i)
	}
	require.True(t, bv.GetBit(-1))

	// reminder: rank(i) = number of ones in range [0, i).
	expectedRanks := []int{0, 1, 1, 2, 3, 3, 3, 4, 4, 5, 5}
	for i, expected := range expectedRanks {
		require.Equal(t, expected, bv.Rank1(i), "Rank1(%d)", i)
		require.Equal(t, i-expected, bv.Rank0(i), "Rank0(%d)", i)
	}
	require.Equal(t, -1, bv.Rank1(-1))
	require.Equal(t, -1, bv.Rank1(65))
	require.Equal(t, -1, bv.Rank0(65))
	require.Equal(t, 59, bv.Rank1(64))

	// reminder: select(k) = position right after the k-th 1
	expectedSelects := []int{-1, 1, 3, 4, 7, 9, 11}
	for k, expected := range expectedSelects {
		require.Equal(t, expected, bv.Select1(k), "Select1(%d)", k)
	}
	require.Equal(t, 64, bv.Select1(59))
	require.Equal(t, -1, bv.Select1(60))

	expectedSelects0 := []int{-1, 2, 5, 6, 8, 10, -1}
	for k, expected := range expectedSelects0 {
		require.Equal(t, expected, bv.Select0(k), "Select0(%d)", k)
	}
}

func TestBitVectorEmpty(t *testing.T) {
	t.Parallel()
	bv := NewBuilder().Build()

	require.Equal(t, 0, bv.Len())
	require.Equal(t, 0, bv.Size())
	require.Equal(t, 0, bv.Rank1(0))
	require.Equal(t, 0, bv.Rank0(0))
	require.Equal(t, -1, bv.Rank1(1))
	require.Equal(t, -1, bv.Select1(1))
	require.Equal(t, -1, bv.Select0(1))
	require.True(t, bv.GetBit(0))
}

func TestBitVectorFromBinary(t *testing.T) {
	t.Parallel()
	bv := FromBinary("0101101")
	require.Equal(t, 7, bv.Len())
	require.Equal(t, 2, bv.Rank1(4))
	require.Equal(t, 2, bv.Select1(1))
	require.Equal(t, 1, bv.Select0(1))
	require.Contains(t, bv.String(), "0101101111")
}

func TestBuilderAddN(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.AddN(false, 1000)
	b.AddN(true, 100)
	b.AddN(false, 1000)
	require.Equal(t, 2100, b.Len())
	bv := b.Build()

	require.Equal(t, 2112, bv.Size())
	require.Equal(t, 100+12, bv.Ones())
	require.Equal(t, 1001, bv.Select1(1))
	require.Equal(t, 1100, bv.Select1(100))
	require.Equal(t, 2101, bv.Select1(101))
	require.Equal(t, 1000, bv.Select0(1000))
	require.Equal(t, 1101, bv.Select0(1001))
	require.Equal(t, 2100, bv.Select0(2000))
}

// Word-aligned vectors have no padding, so Select1 past the last one fails.
func TestBitVectorWordAligned(t *testing.T) {
	t.Parallel()
	b := NewBuilder()
	b.AddN(true, 64)
	bv := b.Build()
	require.Equal(t, 64, bv.Size())
	require.Equal(t, 64, bv.Select1(64))
	require.Equal(t, -1, bv.Select1(65))
}

var testSizes = []int{1, 15, 16, 63, 64, 65, 1023, 1024, 1025, 3000, 70_000}
var testDensities = []float64{0.01, 0.3, 0.5, 0.97}

func TestBitVectorMatchesRSDic(t *testing.T) {
	t.Parallel()
	for _, size := range testSizes {
		for _, density := range testDensities {
			size, density := size, density
			t.Run(fmt.Sprintf("Size_%d_Density_%.2f", size, density), func(t *testing.T) {
				t.Parallel()
				bitsIn := randomBits(size, density, int64(size)*31+int64(density*100))
				bv := buildFrom(bitsIn)
				rs := rsdic.New()
				for _, bit := range bitsIn {
					rs.PushBack(bit)
				}

				for i := 0; i <= size; i++ {
					require.Equal(t, int(rs.Rank(uint64(i), true)), bv.Rank1(i), "Rank1(%d)", i)
					if i < size {
						require.Equal(t, rs.Bit(uint64(i)), bv.GetBit(i), "GetBit(%d)", i)
					}
				}

				// rsdic selects by 0-indexed rank and returns the bit position itself
				ones := int(rs.Rank(rs.Num(), true))
				for k := 0; k < ones; k++ {
					require.Equal(t, int(rs.Select(uint64(k), true)), bv.Select1(k+1)-1, "Select1(%d)", k+1)
				}
				zeros := size - ones
				require.Equal(t, zeros, bv.Zeros())
				for k := 0; k < zeros; k++ {
					require.Equal(t, int(rs.Select(uint64(k), false)), bv.Select0(k+1)-1, "Select0(%d)", k+1)
				}
			})
		}
	}
}

func TestRankSelectDuality(t *testing.T) {
	t.Parallel()
	for _, size := range testSizes {
		bitsIn := randomBits(size, 0.4, int64(size))
		bv := buildFrom(bitsIn)

		for k := 1; k <= bv.Ones(); k++ {
			p := bv.Select1(k)
			require.Equal(t, k, bv.Rank1(p), "size %d: Rank1(Select1(%d))", size, k)
			require.True(t, bv.GetBit(p-1))
		}
		for k := 1; k <= bv.Zeros(); k++ {
			p := bv.Select0(k)
			require.Equal(t, k, bv.Rank0(p), "size %d: Rank0(Select0(%d))", size, k)
			require.False(t, bv.GetBit(p-1))
		}
		for p := 0; p < bv.Size(); p++ {
			if !bv.GetBit(p) {
				continue
			}
			r := bv.Rank1(p)
			require.LessOrEqual(t, bv.Select1(r), p)
			require.Less(t, p, bv.Select1(r+1))
		}
	}
}

func TestFromWords(t *testing.T) {
	t.Parallel()
	bitsIn := randomBits(3000, 0.5, 7)
	bv := buildFrom(bitsIn)

	words := append([]uint64(nil), bv.Words()...)
	loaded, err := FromWords(words, bv.Len())
	require.NoError(t, err)
	require.Equal(t, bv.Ones(), loaded.Ones())
	for i := 0; i <= bv.Size(); i++ {
		require.Equal(t, bv.Rank1(i), loaded.Rank1(i))
	}

	_, err = FromWords(words[:len(words)-1], bv.Len())
	require.ErrorIs(t, err, ErrCorrupt)

	_, err = FromWords(words, -5)
	require.ErrorIs(t, err, ErrCorrupt)

	broken := append([]uint64(nil), words...)
	broken[len(broken)-1] &^= uint64(1) << 63
	_, err = FromWords(broken, bv.Len())
	require.ErrorIs(t, err, ErrCorrupt)

	empty, err := FromWords(nil, 0)
	require.NoError(t, err)
	require.Equal(t, 0, empty.Size())
}

func TestMemDetailed(t *testing.T) {
	t.Parallel()
	bv := buildFrom(randomBits(5000, 0.5, 1))
	report := bv.MemDetailed("lbs")
	require.Equal(t, "lbs", report.Name)
	require.Equal(t, bv.ByteSize(), report.TotalBytes)
	require.Equal(t, report.TotalBytes, report.Sum())
	require.NotContains(t, bv.String(), "bits:")
}
