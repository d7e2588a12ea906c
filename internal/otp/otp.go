// Package otp generates the short numeric one-time codes used for email
// verification and password reset.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	min  = 100000
	span = 900000
)

// Generate returns a 6-digit decimal code in [100000, 999999].
//
// Codes gate account ownership, so they are drawn from crypto/rand rather
// than a seeded PRNG.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("otp generation error: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+min), nil
}
