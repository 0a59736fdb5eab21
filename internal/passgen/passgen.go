// Package passgen generates random passwords from selectable character
// classes using crypto/rand.
package passgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
)

const (
	MinLength     = 8
	MaxLength     = 128
	DefaultLength = 16
)

const (
	upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower   = "abcdefghijklmnopqrstuvwxyz"
	digits  = "0123456789"
	symbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	similar = "Il1O0o"
)

var ErrNoCharset = fmt.Errorf("%w: at least one character class must be selected", common.ErrValidation)

// Options selects length and character classes.
type Options struct {
	Length         int
	Upper          bool
	Lower          bool
	Digits         bool
	Symbols        bool
	ExcludeSimilar bool
}

// DefaultOptions enables every class at DefaultLength.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, Upper: true, Lower: true, Digits: true, Symbols: true}
}

func (o Options) classes() []string {
	var sets []string
	add := func(enabled bool, set string) {
		if !enabled {
			return
		}
		if o.ExcludeSimilar {
			set = strings.Map(func(r rune) rune {
				if strings.ContainsRune(similar, r) {
					return -1
				}
				return r
			}, set)
		}
		sets = append(sets, set)
	}
	add(o.Upper, upper)
	add(o.Lower, lower)
	add(o.Digits, digits)
	add(o.Symbols, symbols)
	return sets
}

// Generate returns a password of o.Length characters containing at least
// one character of every selected class.
func Generate(o Options) (string, error) {
	if o.Length < MinLength || o.Length > MaxLength {
		return "", fmt.Errorf("%w: length must be between %d and %d", common.ErrValidation, MinLength, MaxLength)
	}
	sets := o.classes()
	if len(sets) == 0 {
		return "", ErrNoCharset
	}

	out := make([]byte, 0, o.Length)
	for _, set := range sets {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	all := strings.Join(sets, "")
	for len(out) < o.Length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// shuffle so the guaranteed characters are not always in front
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
