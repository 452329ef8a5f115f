package shortener

import (
	"crypto/sha256"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/jaevor/go-nanoid"
)

// base62Alphabet is the URL-safe alphabet used for generated codes.
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const maxCustomCodeLength = 20

// Generator produces short codes. Generate gives no uniqueness guarantee by
// itself; callers enforce uniqueness via existence checks and retry.
type Generator interface {
	// Generate derives a length-character Base62 code from the seed plus
	// entropy from the clock and random source.
	Generate(seed string, length int) string

	// GenerateCustom validates a caller-supplied code and returns it, or
	// ErrInvalidCustomCode. It performs no uniqueness check.
	GenerateCustom(code string) (string, error)
}

// DigestGenerator derives codes from a SHA-256 digest over the seed, the
// current timestamp, and a random 64-bit nonce.
type DigestGenerator struct {
	now  func() time.Time
	rand func() uint64
}

// NewDigestGenerator creates a digest-based generator. A nil now or rnd falls
// back to the real clock and math/rand.
func NewDigestGenerator(now func() time.Time, rnd func() uint64) *DigestGenerator {
	if now == nil {
		now = time.Now
	}

	if rnd == nil {
		rnd = rand.Uint64
	}

	return &DigestGenerator{now: now, rand: rnd}
}

func (g *DigestGenerator) Generate(seed string, length int) string {
	h := sha256.New()
	_, _ = io.WriteString(h, seed)
	_, _ = io.WriteString(h, strconv.FormatInt(g.now().Unix(), 10))
	_, _ = io.WriteString(h, strconv.FormatUint(g.rand(), 10))
	sum := h.Sum(nil)

	// Fold the first 8 digest bytes into a 64-bit accumulator.
	var acc uint64
	for i, b := range sum[:8] {
		acc += uint64(b) << (i * 8)
	}

	code := make([]byte, 0, length)
	for len(code) < length {
		code = append(code, base62Alphabet[acc%62])
		acc /= 62

		// Reseed when the accumulator runs out of bits before the code is full.
		if acc == 0 {
			acc = g.rand()
		}
	}

	return string(code)
}

func (g *DigestGenerator) GenerateCustom(code string) (string, error) {
	return validateCustomCode(code)
}

// NanoIDGenerator is an alternative pure-random generator built on nanoid,
// restricted to the Base62 alphabet. It memoizes one nanoid function per
// requested length.
type NanoIDGenerator struct {
	mu  sync.Mutex
	fns map[int]func() string
}

// NewNanoIDGenerator creates a nanoid-backed generator.
func NewNanoIDGenerator() *NanoIDGenerator {
	return &NanoIDGenerator{fns: make(map[int]func() string)}
}

func (g *NanoIDGenerator) Generate(_ string, length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn, ok := g.fns[length]
	if !ok {
		var err error

		fn, err = nanoid.CustomASCII(base62Alphabet, length)
		if err != nil {
			// Only reachable for lengths outside nanoid's 2..255 range.
			panic(fmt.Sprintf("shortener: invalid code length %d: %v", length, err))
		}

		g.fns[length] = fn
	}

	return fn()
}

func (g *NanoIDGenerator) GenerateCustom(code string) (string, error) {
	return validateCustomCode(code)
}

func validateCustomCode(code string) (string, error) {
	if code == "" || len(code) > maxCustomCodeLength {
		return "", fmt.Errorf("%w: must be between 1 and %d characters", ErrInvalidCustomCode, maxCustomCodeLength)
	}

	for _, c := range []byte(code) {
		if !isCodeByte(c) {
			return "", fmt.Errorf("%w: only alphanumeric characters and hyphens are allowed", ErrInvalidCustomCode)
		}
	}

	return code, nil
}

func isCodeByte(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c == '-':
		return true
	default:
		return false
	}
}

// Compile-time checks.
var (
	_ Generator = (*DigestGenerator)(nil)
	_ Generator = (*NanoIDGenerator)(nil)
)
