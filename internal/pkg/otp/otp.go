package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Length is the number of digits in a code.
const Length = 6

var upper = big.NewInt(1_000_000)

// Generate returns a uniformly random zero-padded 6-digit code.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
