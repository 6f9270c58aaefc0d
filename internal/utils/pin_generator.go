package utils

import (
	"crypto/rand"
	"math/big"
)

// charset omits 0/O and 1/I so a PIN survives being read out loud.
const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePIN returns a random dashboard access PIN of the given length.
func GeneratePIN(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[num.Int64()]
	}
	return string(b), nil
}
