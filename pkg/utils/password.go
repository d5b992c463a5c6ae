package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var pinRegex = regexp.MustCompile(`^\d{4,6}$`)

// HashPassword hashes a password (or employee PIN) with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
func VerifyPassword(password, hashedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidPin reports whether pin is 4–6 digits.
func ValidPin(pin string) bool {
	return pinRegex.MatchString(pin)
}
