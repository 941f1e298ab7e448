package main

import (
	"crypto/rand"
	"math"
	"math/big"
)

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

const roomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRoomCode returns a random n-character room code without ambiguous characters
func GenerateRoomCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(roomCodeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = roomCodeChars[idx.Int64()]
	}
	return string(b)
}
