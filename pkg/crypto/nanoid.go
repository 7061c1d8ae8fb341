package crypto

import (
	"crypto/rand"
	"errors"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	DefaultAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	DefaultIDSize   int    = 22 // 22 * 6 = 132 bits (uuid is 128 bits) of entropy
	maxAlphabetSize int    = 255
	minAlphabetSize int    = 8
)

var (
	ErrAlphabetTooLong     = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort    = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetInvalidUTF8 = errors.New("alphabet must contain valid UTF-8")
	ErrAlphabetNotASCII    = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDSize       = errors.New("id size must be positive")
)

// NanoIDGenerator produces fixed-size random ids over an ASCII alphabet.
type NanoIDGenerator struct {
	alphabet string
	size     int
	mask     int
	step     int
}

func getMask(alphabetLen int) int {
	for i := 1; i <= 8; i++ {
		mask := (2 << uint(i)) - 1
		if mask >= alphabetLen-1 {
			return mask
		}
	}
	return maxAlphabetSize // Max mask for 8 bits
}

// NewNanoID validates alphabet and size. An empty alphabet selects
// DefaultAlphabet; a zero size selects DefaultIDSize.
func NewNanoID(alphabet string, size int) (*NanoIDGenerator, error) {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if size == 0 {
		size = DefaultIDSize
	}
	if size < 0 {
		return nil, ErrInvalidIDSize
	}

	if !utf8.ValidString(alphabet) {
		return nil, ErrAlphabetInvalidUTF8
	}

	// Generate() indexes by byte position
	for _, r := range alphabet {
		if r > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}

	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	mask := getMask(len(alphabet))
	return &NanoIDGenerator{
		alphabet: alphabet,
		size:     size,
		mask:     mask,
		step:     int(math.Ceil(1.6 * float64(mask*size) / float64(len(alphabet)))),
	}, nil
}

func (n *NanoIDGenerator) Generate() (string, error) {
	alphabetLen := len(n.alphabet)

	id := make([]byte, n.size)
	buffer := make([]byte, n.step)

	for position := 0; position < n.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}

		for i := 0; i < n.step && position < n.size; i++ {
			index := buffer[i] & byte(n.mask)

			// Use index if it's valid for our alphabet
			if int(index) < alphabetLen {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}

// Valid reports whether id could have been produced by this generator.
// Used to reject client-supplied ids before they reach a storage key.
func (n *NanoIDGenerator) Valid(id string) bool {
	if len(id) != n.size {
		return false
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(n.alphabet, id[i]) < 0 {
			return false
		}
	}
	return true
}
