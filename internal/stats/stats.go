// Package stats derives stable pseudo-random view/like counts from a
// video identifier. There are no server-side counters; the numbers only
// need to look consistent across renders and sessions for the same seed.
package stats

import (
	"math"
	"unicode/utf16"
)

type Stats struct {
	Views int `json:"views"`
	Likes int `json:"likes"`
}

// Compute is pure and deterministic: the same seed always yields the
// same stats, and the empty seed yields zeros.
//
// The hash is a signed 32-bit multiply-add over UTF-16 code units with
// wrapping overflow, so numbers match what the web client shows for the
// same URLs. Remainders use truncated (sign-of-dividend) semantics.
func Compute(seed string) Stats {
	if seed == "" {
		return Stats{}
	}

	var hash int32
	for _, u := range utf16.Encode([]rune(seed)) {
		hash = hash*31 + int32(u)
	}

	h := int64(hash)
	baseViews := abs(h%900000) + 500000
	views := baseViews * (abs(h%5) + 2)
	likes := int64(math.Floor(float64(views) * (0.12 + float64(abs(h%15))/100)))

	return Stats{Views: int(views), Likes: int(likes)}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
