package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateReferenceNo returns a short human-readable reference code used on
// submission receipts.
func GenerateReferenceNo() (string, error) {
	return gonanoid.Generate(characters, 8)
}
