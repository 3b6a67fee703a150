package registration

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// secretLen is the length of generated one-time passwords.
const secretLen = 16

// secretAlphabet deliberately omits characters that are easy to misread
// on a phone screen (0/O, 1/l/I).
const secretAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateSecret returns a random one-time password for a new account.
func GenerateSecret() (string, error) {
	max := big.NewInt(int64(len(secretAlphabet)))
	buf := make([]byte, secretLen)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return string(buf), nil
}
