package shortener_test

import (
	"strings"
	"testing"
	"time"

	"github.com/serroba/tinyurl-go/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func assertBase62(t *testing.T, code string) {
	t.Helper()

	for _, c := range code {
		assert.Contains(t, base62Alphabet, string(c))
	}
}

func TestDigestGenerator_Generate(t *testing.T) {
	t.Run("emits exactly the requested length", func(t *testing.T) {
		gen := shortener.NewDigestGenerator(nil, nil)

		for _, length := range []int{1, 6, 8, 20} {
			code := gen.Generate("https://example.com", length)

			assert.Len(t, code, length)
			assertBase62(t, code)
		}
	})

	t.Run("differs across nonces for the same seed", func(t *testing.T) {
		gen := shortener.NewDigestGenerator(nil, nil)

		first := gen.Generate("https://example.com", 8)
		second := gen.Generate("https://example.com", 8)

		assert.NotEqual(t, first, second)
	})

	t.Run("is deterministic for pinned clock and randomness", func(t *testing.T) {
		now := func() time.Time { return time.Unix(1700000000, 0) }
		rnd := func() uint64 { return 42 }

		first := shortener.NewDigestGenerator(now, rnd).Generate("https://example.com", 8)
		second := shortener.NewDigestGenerator(now, rnd).Generate("https://example.com", 8)

		assert.Equal(t, first, second)
	})

	t.Run("reseeds when the accumulator drains on long codes", func(t *testing.T) {
		// 20 Base62 characters need more than 64 bits, forcing at least one
		// reseed of the accumulator.
		gen := shortener.NewDigestGenerator(nil, nil)

		code := gen.Generate("https://example.com", 20)

		assert.Len(t, code, 20)
		assertBase62(t, code)
	})
}

func TestDigestGenerator_GenerateCustom(t *testing.T) {
	gen := shortener.NewDigestGenerator(nil, nil)

	t.Run("accepts alphanumeric codes with hyphens", func(t *testing.T) {
		for _, code := range []string{"abc-123", "A", "my-custom-code", strings.Repeat("x", 20)} {
			got, err := gen.GenerateCustom(code)

			require.NoError(t, err)
			assert.Equal(t, code, got)
		}
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := gen.GenerateCustom("")

		assert.ErrorIs(t, err, shortener.ErrInvalidCustomCode)
	})

	t.Run("rejects codes longer than 20 characters", func(t *testing.T) {
		_, err := gen.GenerateCustom(strings.Repeat("x", 21))

		assert.ErrorIs(t, err, shortener.ErrInvalidCustomCode)
	})

	t.Run("rejects codes with invalid characters", func(t *testing.T) {
		for _, code := range []string{"abc!", "a b", "under_score", "slash/", "ünïcode"} {
			_, err := gen.GenerateCustom(code)

			assert.ErrorIs(t, err, shortener.ErrInvalidCustomCode, "code %q", code)
		}
	})
}

func TestNanoIDGenerator(t *testing.T) {
	t.Run("emits base62 codes of the requested length", func(t *testing.T) {
		gen := shortener.NewNanoIDGenerator()

		code := gen.Generate("ignored", 8)

		assert.Len(t, code, 8)
		assertBase62(t, code)
	})

	t.Run("reuses the memoized function per length", func(t *testing.T) {
		gen := shortener.NewNanoIDGenerator()

		first := gen.Generate("ignored", 8)
		second := gen.Generate("ignored", 8)

		assert.Len(t, second, 8)
		assert.NotEqual(t, first, second)
	})

	t.Run("validates custom codes like the digest generator", func(t *testing.T) {
		gen := shortener.NewNanoIDGenerator()

		_, err := gen.GenerateCustom("abc!")
		assert.ErrorIs(t, err, shortener.ErrInvalidCustomCode)

		got, err := gen.GenerateCustom("abc-123")
		require.NoError(t, err)
		assert.Equal(t, "abc-123", got)
	})
}
