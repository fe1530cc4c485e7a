package helpers

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// RandomSource yields uniform integers in [0, n)
type RandomSource interface {
	Intn(n int) int
}

// CryptoRandom draws from crypto/rand
type CryptoRandom struct{}

// Intn returns a uniform integer in [0, n); it panics if the system source fails
func (CryptoRandom) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("crypto/rand unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// IntBetween returns a uniform integer in [min, max]
func IntBetween(src RandomSource, min, max int) int {
	return min + src.Intn(max-min+1)
}

// RandomHex returns n random bytes encoded as hex
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
