package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString draws length symbols uniformly from alphabet using crypto/rand.
// The alphabet may contain multi-byte runes; the result has length runes.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(symbols)))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		builder.WriteRune(symbols[position.Int64()])
	}
	return builder.String(), nil
}
