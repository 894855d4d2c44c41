package test

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns a pseudo-random ASCII string within the provided bounds.
// When maxLen equals minLen the resulting string always has that exact length.
func RandomASCIIString(minLen, maxLen int) string {
	return randomFrom(asciiLetters, minLen, maxLen)
}

// RandomPhone returns a local-format phone number such as +62812345678.
func RandomPhone() string {
	return "+628" + randomFrom(digits, 8, 10)
}

// RandomAmount returns a whole-rupiah amount in [minUnits, maxUnits] thousands,
// matching how service prices are quoted.
func RandomAmount(minUnits, maxUnits int64) decimal.Decimal {
	if minUnits <= 0 {
		minUnits = 1
	}
	if maxUnits < minUnits {
		maxUnits = minUnits
	}
	units := minUnits + int64(randomIntn(int(maxUnits-minUnits+1)))
	return decimal.NewFromInt(units * 1000)
}

func randomFrom(alphabet string, minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += randomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = alphabet[randomIntn(len(alphabet))]
	}
	return string(buf)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
