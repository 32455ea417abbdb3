package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a uniformly random numeric code of the
// given length, left-padded with zeros. Length is clamped to [4, 10].
func GenerateNumericCode(length int) (string, error) {
	if length < 4 {
		length = 4
	}
	if length > 10 {
		length = 10
	}
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
