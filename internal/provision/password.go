package provision

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// PasswordLength is the length of generated mailbox passwords.
const PasswordLength = 16

// GeneratePassword returns a random password drawn from a mixed
// letters/digits/symbols alphabet using the system CSPRNG.
func GeneratePassword(length int) (string, error) {
	alphabetLen := big.NewInt(int64(len(passwordAlphabet)))
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		password[i] = passwordAlphabet[n.Int64()]
	}
	return string(password), nil
}
