package app

import (
	"crypto/rand"
	"math/big"
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLength   = 6
)

// JoinCodeGenerator produces a candidate join code. Uniqueness is the caller's job.
type JoinCodeGenerator func() (string, error)

// GenerateJoinCode draws joinCodeLength symbols uniformly from [A-Z0-9].
func GenerateJoinCode() (string, error) {
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, joinCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
