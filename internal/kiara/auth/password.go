package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("kiara-timing-dummy"), bcrypt.DefaultCost)
	return hash
})

// BurnCompare runs a comparison against a fixed hash so a login for an
// unknown user costs the same as one with a wrong password.
func BurnCompare(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
