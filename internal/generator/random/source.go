// Package random owns every random draw the generator makes.
//
// A Source is seeded once and handed to each sampling call. Stages never share
// a Source: Stream derives an independent deterministic stream keyed by the
// master seed and a stage index, so stages can run in any order, or
// concurrently, and still produce the same dataset for the same seed.
//
// A Source is not safe for concurrent use.
package random

import (
	"encoding/binary"
	"encoding/hex"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// golden scrambles (seed, stream) pairs into faker seeds.
const golden = 0x9E3779B97F4A7C15

// Source is a seeded random stream plus a faker drawing from the same key.
type Source struct {
	seed   uint64
	stream uint64
	rng    *rand.Rand
	faker  *gofakeit.Faker
}

// New returns the master stream for seed.
func New(seed uint64) *Source {
	return newStream(seed, 0)
}

func newStream(seed, stream uint64) *Source {
	return &Source{
		seed:   seed,
		stream: stream,
		rng:    rand.New(rand.NewPCG(seed, stream)),
	}
}

// Stream returns the stream for stage index. Streams depend only on the
// master seed and the index, never on draws already taken.
func (s *Source) Stream(index uint64) *Source {
	return newStream(s.seed, index+1)
}

// Seed returns the master seed this source descends from.
func (s *Source) Seed() uint64 { return s.seed }

// Faker returns a gofakeit faker seeded from this stream.
func (s *Source) Faker() *gofakeit.Faker {
	if s.faker == nil {
		fs := s.seed ^ (s.stream+1)*golden
		if fs == 0 {
			// gofakeit treats 0 as "seed from crypto/rand"
			fs = golden
		}
		s.faker = gofakeit.New(fs)
	}
	return s.faker
}

// Float64 returns a uniform draw in [0,1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// IntN returns a uniform draw in [0,n). It panics if n <= 0.
func (s *Source) IntN(n int) int { return s.rng.IntN(n) }

// Between returns a uniform integer in [lo, hi], both inclusive.
func (s *Source) Between(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Int64N(hi-lo+1)
}

// Normal draws from N(mean, stddev²).
func (s *Source) Normal(mean, stddev float64) float64 {
	return mean + stddev*s.rng.NormFloat64()
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Offset returns a uniform duration in [0, d) at whole-second granularity.
func (s *Source) Offset(d time.Duration) time.Duration {
	secs := int64(d / time.Second)
	if secs <= 0 {
		return 0
	}
	return time.Duration(s.rng.Int64N(secs)) * time.Second
}

// Sample returns k distinct indices drawn without replacement from [0,n).
// The caller must ensure k <= n.
func (s *Source) Sample(n, k int) []int {
	perm := s.rng.Perm(n)
	return perm[:k]
}

// Read fills p with random bytes, so a Source can feed uuid.NewRandomFromReader.
func (s *Source) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], s.rng.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// Hex returns n upper-case hex digits.
func (s *Source) Hex(n int) string {
	raw := make([]byte, (n+1)/2)
	_, _ = s.Read(raw)
	return strings.ToUpper(hex.EncodeToString(raw))[:n]
}

// UUID returns a version 4 UUID drawn from this stream.
func (s *Source) UUID() uuid.UUID {
	// Read never fails, so neither does NewRandomFromReader.
	return uuid.Must(uuid.NewRandomFromReader(s))
}

// Minter issues prefixed hex identifiers that are unique within the minter.
type Minter struct {
	src  *Source
	seen map[string]struct{}
}

// Minter returns an id minter drawing from s.
func (s *Source) Minter() *Minter {
	return &Minter{src: s, seen: make(map[string]struct{})}
}

// Mint returns prefix followed by hexLen hex digits, redrawing on collision.
func (m *Minter) Mint(prefix string, hexLen int) string {
	for {
		id := prefix + m.src.Hex(hexLen)
		if _, dup := m.seen[id]; dup {
			continue
		}
		m.seen[id] = struct{}{}
		return id
	}
}
