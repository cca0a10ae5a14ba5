// Package auth holds the request-scoped identity and the ownership guard.
package auth

import "pinboard/internal/models"

// Identity is the authenticated user bound to the current request. A nil
// *Identity means the request is unauthenticated. There is no process-wide
// session state; handlers thread the identity through explicitly.
type Identity struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// CanModify reports whether ident may edit or delete the given post.
// It performs no I/O: both arguments are already-fetched values.
func CanModify(post *models.Post, ident *Identity) bool {
	if post == nil || ident == nil {
		return false
	}
	return post.AuthorID == ident.UserID
}
