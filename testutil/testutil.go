package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/artidx/keys"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Shuffle shuffles keys in place.
func (r *RNG) Shuffle(ks [][]byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(ks), func(i, j int) { ks[i], ks[j] = ks[j], ks[i] })
}

// SequentialKeys returns the Uint64 keys of [from, from+n) in order.
func SequentialKeys(from uint64, n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = keys.Uint64(from + uint64(i))
	}
	return out
}

// Uint64Keys returns n distinct random Uint64 keys.
func (r *RNG) Uint64Keys(n int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uint64]struct{}, n)
	out := make([][]byte, 0, n)
	for len(out) < n {
		v := r.rand.Uint64()
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, keys.Uint64(v))
	}
	return out
}

// StringKeys returns n distinct String keys of length [minLen, maxLen]
// drawn from alphabet. A small alphabet produces long shared prefixes.
func (r *RNG) StringKeys(n, minLen, maxLen int, alphabet string) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, n)
	out := make([][]byte, 0, n)
	buf := make([]byte, maxLen)
	for len(out) < n {
		l := minLen + r.rand.Intn(maxLen-minLen+1)
		for i := 0; i < l; i++ {
			buf[i] = alphabet[r.rand.Intn(len(alphabet))]
		}
		s := string(buf[:l])
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, keys.String(s))
	}
	return out
}

// Sorted returns a sorted copy of ks.
func Sorted(ks [][]byte) [][]byte {
	out := append([][]byte(nil), ks...)
	sort.Slice(out, func(i, j int) bool { return string(out[i]) < string(out[j]) })
	return out
}
