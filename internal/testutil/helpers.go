package testutil

import (
	"testing"
	"time"

	"github.com/reviewhub/reviewhub/internal/models"
	"github.com/reviewhub/reviewhub/internal/utils"
)

// AuthHeader mints a valid bearer header for the user, for driving
// authenticated endpoints in handler tests.
func AuthHeader(t *testing.T, user *models.User, secret string) string {
	token, err := utils.GenerateToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate test token: %v", err)
	}
	return "Bearer " + token
}
