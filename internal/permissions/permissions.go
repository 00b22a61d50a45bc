// Package permissions holds the stateless access rules evaluated per request.
// Read-only verbs never reach these checks; the router exposes GET endpoints
// without authentication. Evaluation has no side effects.
package permissions

import "github.com/reviewhub/reviewhub/internal/models"

// CanMutateCatalog reports whether the caller may create, change or delete
// categories, genres and titles. Admins and superusers only.
func CanMutateCatalog(user *models.User) bool {
	return user != nil && user.IsAdmin()
}

// CanMutateAuthored reports whether the caller may change or delete an
// authored resource (review or comment) owned by authorID.
func CanMutateAuthored(user *models.User, authorID uint) bool {
	if user == nil {
		return false
	}
	return user.ID == authorID || user.IsModerator() || user.IsAdmin()
}

// CanAdministerUsers reports whether the caller may manage user records.
// The "me" sub-resource is exempt: any authenticated user acts on their own
// record there.
func CanAdministerUsers(user *models.User) bool {
	return user != nil && user.IsAdmin()
}
