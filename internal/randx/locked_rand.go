package randx

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

const alphaNumAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// LockedRand: goroutine-safe wrapper around math/rand/v2.Rand.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New: wraps r; nil gets a zero-seeded PCG (deterministic, for tests).
func New(r *rand.Rand) *LockedRand {
	if r == nil {
		r = rand.New(rand.NewPCG(0, 0))
	}
	return &LockedRand{r: r}
}

// NewSeeded: returns a LockedRand seeded from crypto/rand.
func NewSeeded() *LockedRand {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return New(nil)
	}
	pcg := rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	)
	return &LockedRand{r: rand.New(pcg)}
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// AlphaNum: returns n random lowercase alphanumeric characters.
func (l *LockedRand) AlphaNum(n int) string {
	if n <= 0 {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]byte, n)
	for i := range out {
		out[i] = alphaNumAlphabet[l.r.IntN(len(alphaNumAlphabet))]
	}
	return string(out)
}
