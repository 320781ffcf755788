package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// randomCode returns a uniformly random decimal code of exactly digits
// digits, never starting with zero.
func randomCode(digits int) (string, error) {
	low := int64(1)
	for i := 1; i < digits; i++ {
		low *= 10
	}
	span := big.NewInt(9 * low)

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}
