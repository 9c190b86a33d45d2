package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	URLAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	DefaultIDSize = 22 // 22 * 6 = 132 bits, above a uuid's 128

	maxAlphabetSize = 255
	minAlphabetSize = 8
)

var (
	ErrAlphabetTooLong  = errors.New("alphabet must contain no more than 255 characters")
	ErrAlphabetTooShort = errors.New("alphabet must contain at least 8 characters")
	ErrAlphabetNotASCII = errors.New("alphabet must contain only ASCII characters")
	ErrInvalidIDSize    = errors.New("id size must be positive")
)

// NanoIDGenerator produces random identifiers over a fixed ASCII alphabet.
// It is safe for concurrent use.
type NanoIDGenerator struct {
	alphabet string
	size     int
	mask     byte
	step     int
}

// NewNanoID returns a generator of size-character ids drawn from alphabet.
// An empty alphabet selects URLAlphabet.
func NewNanoID(alphabet string, size int) (*NanoIDGenerator, error) {
	if alphabet == "" {
		alphabet = URLAlphabet
	}
	if size <= 0 {
		return nil, ErrInvalidIDSize
	}
	// Generate indexes by byte, so multi-byte runes are not allowed.
	for i := 0; i < len(alphabet); i++ {
		if alphabet[i] > 127 {
			return nil, ErrAlphabetNotASCII
		}
	}
	if len(alphabet) > maxAlphabetSize {
		return nil, ErrAlphabetTooLong
	}
	if len(alphabet) < minAlphabetSize {
		return nil, ErrAlphabetTooShort
	}

	mask := maskFor(len(alphabet))
	return &NanoIDGenerator{
		alphabet: alphabet,
		size:     size,
		mask:     mask,
		step:     int(math.Ceil(1.6 * float64(int(mask)*size) / float64(len(alphabet)))),
	}, nil
}

// NewIDGenerator returns the generator used for record ids.
func NewIDGenerator() *NanoIDGenerator {
	g, err := NewNanoID(URLAlphabet, DefaultIDSize)
	if err != nil {
		panic(err) // constants are valid
	}
	return g
}

// maskFor returns the smallest all-ones mask covering every alphabet index.
func maskFor(alphabetLen int) byte {
	for bits := 1; bits < 8; bits++ {
		mask := (1 << bits) - 1
		if mask >= alphabetLen-1 {
			return byte(mask)
		}
	}
	return 0xFF
}

// Generate returns a new id. Bytes that mask outside the alphabet are
// discarded so every character is equally likely.
func (n *NanoIDGenerator) Generate() (string, error) {
	id := make([]byte, n.size)
	buffer := make([]byte, n.step)

	for position := 0; position < n.size; {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for i := 0; i < n.step && position < n.size; i++ {
			index := buffer[i] & n.mask
			if int(index) < len(n.alphabet) {
				id[position] = n.alphabet[index]
				position++
			}
		}
	}

	return string(id), nil
}
