package shortener

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/martinlindhe/base36"
)

// CodeLength is the width of every generated code.
const CodeLength = 6

// codeSpace is 36^6, the number of distinct codes.
var codeSpace = big.NewInt(36 * 36 * 36 * 36 * 36 * 36)

// Generator draws a candidate short code.
type Generator func() (string, error)

// RandomCode draws uniformly from [0, 36^6) and renders the value as
// lowercase base 36, left-padded with zeros to CodeLength.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("draw short code: %w", err)
	}
	return encode(n.Uint64()), nil
}

func encode(n uint64) string {
	s := strings.ToLower(base36.Encode(n))
	if len(s) < CodeLength {
		s = strings.Repeat("0", CodeLength-len(s)) + s
	}
	return s
}
