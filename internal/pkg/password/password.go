package password

import "golang.org/x/crypto/bcrypt"

// Hash returns a bcrypt digest of the plaintext password.
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored digest. It fails
// closed: a malformed digest is just a mismatch, never an error.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
