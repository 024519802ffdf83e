package louds

import (
	"Lexicon/codec"
	"testing"

	iradix "github.com/hashicorp/go-immutable-radix"
	reference "github.com/siongui/go-succinct-data-structure-trie/reference"
)

func setupLOUDSTrie(b *testing.B, n int) (*Trie[int], []string) {
	b.Helper()
	b.StopTimer()
	keys := generateTextKeys(n, 42)
	m := make(map[string][]int, n)
	for i, key := range keys {
		m[key] = []int{i}
	}
	trie, err := Build(m)
	if err != nil {
		b.Fatal(err)
	}
	b.StartTimer()
	return trie, keys
}

func setupRadixTree(b *testing.B, n int) (*iradix.Tree, []string) {
	b.Helper()
	b.StopTimer()
	keys := generateTextKeys(n, 42)
	r := iradix.New()
	for i, key := range keys {
		r, _, _ = r.Insert([]byte(key), []int{i})
	}
	b.StartTimer()
	return r, keys
}

func setupFrozenTrie(b *testing.B, n int) (*reference.FrozenTrie, []string) {
	b.Helper()
	b.StopTimer()
	keys := generateTextKeys(n, 42)

	t := &reference.Trie{}
	t.Init()
	for _, key := range keys {
		t.Insert(key)
	}
	encoded := t.Encode()
	rd := reference.CreateRankDirectory(encoded, t.GetNodeCount()*2+1, reference.L1, reference.L2)
	frozen := &reference.FrozenTrie{}
	frozen.Init(encoded, rd.GetData(), t.GetNodeCount())

	b.StartTimer()
	return frozen, keys
}

func BenchmarkLOUDS_Build_10K(b *testing.B) {
	keys := generateTextKeys(10_000, 42)
	m := make(map[string][]int, len(keys))
	for i, key := range keys {
		m[key] = []int{i}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(m); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFrozenTrie_Build_10K(b *testing.B) {
	keys := generateTextKeys(10_000, 42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t := &reference.Trie{}
		t.Init()
		for _, key := range keys {
			t.Insert(key)
		}
		_ = t.Encode()
	}
}

func BenchmarkLOUDS_ExactMatch_Hit_100K(b *testing.B) {
	trie, keys := setupLOUDSTrie(b, 100_000)
	for i := 0; i < b.N; i++ {
		trie.ExactMatch(keys[i%len(keys)])
	}
}

func BenchmarkLOUDS_ExactMatch_Miss_100K(b *testing.B) {
	trie, keys := setupLOUDSTrie(b, 100_000)
	for i := 0; i < b.N; i++ {
		trie.ExactMatch(keys[i%len(keys)] + "_miss")
	}
}

func Benchmark_iradix_Get_Hit_100K(b *testing.B) {
	r, keys := setupRadixTree(b, 100_000)
	for i := 0; i < b.N; i++ {
		r.Get([]byte(keys[i%len(keys)]))
	}
}

func BenchmarkFrozenTrie_Lookup_Hit_10K(b *testing.B) {
	frozen, keys := setupFrozenTrie(b, 10_000)
	for i := 0; i < b.N; i++ {
		frozen.Lookup(keys[i%len(keys)])
	}
}

func BenchmarkLOUDS_Predictive_100K(b *testing.B) {
	trie, _ := setupLOUDSTrie(b, 100_000)
	prefixes := []string{"test_1", "word_42", "node_", "algo_9"}
	for i := 0; i < b.N; i++ {
		for range trie.Predictive(prefixes[i%len(prefixes)]) {
		}
	}
}

func Benchmark_iradix_WalkPrefix_100K(b *testing.B) {
	r, _ := setupRadixTree(b, 100_000)
	prefixes := []string{"test_1", "word_42", "node_", "algo_9"}
	for i := 0; i < b.N; i++ {
		r.Root().WalkPrefix([]byte(prefixes[i%len(prefixes)]), func([]byte, interface{}) bool { return false })
	}
}

func BenchmarkLOUDS_CommonPrefix_100K(b *testing.B) {
	trie, keys := setupLOUDSTrie(b, 100_000)
	for i := 0; i < b.N; i++ {
		trie.CommonPrefixSearch(keys[i%len(keys)] + "suffix")
	}
}

func BenchmarkLOUDS_Deserialize_100K(b *testing.B) {
	trie, _ := setupLOUDSTrie(b, 100_000)
	b.StopTimer()
	data, err := trie.Serialize(codec.Default)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.StartTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Deserialize[int](data, codec.Default); err != nil {
			b.Fatal(err)
		}
	}
}
