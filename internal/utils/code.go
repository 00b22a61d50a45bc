package utils

import "github.com/google/uuid"

// GenerateConfirmationCode returns an opaque one-time code. A random UUID
// carries 122 bits of entropy, which is enough to make guessing infeasible.
func GenerateConfirmationCode() string {
	return uuid.New().String()
}
