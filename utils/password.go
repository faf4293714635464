package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword digests a plaintext password with bcrypt at the default cost.
// The digest embeds its own random salt, so equal passwords never hash equal.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt digest.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
