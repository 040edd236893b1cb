// Package account models the authenticated user session and its persistence
// rules.
package account

import (
	"strings"

	"github.com/cexll/storefront-go/pkg/catalog"
)

// Persistence keys for the session fields.
const (
	KeyToken    = "token"
	KeyUserID   = "userId"
	KeyUserName = "userName"
)

// Session is the record of the currently authenticated user. The zero value
// is anonymous. A session is either fully absent or carries user id, display
// name and token together; no partial session is valid.
type Session struct {
	UserID catalog.ID
	Name   string
	Token  string
}

// Authenticated reports whether the session represents a signed-in user.
// The display name is non-authoritative, so only token and user id gate
// authentication.
func (s Session) Authenticated() bool {
	return !s.UserID.IsZero() && strings.TrimSpace(s.Token) != ""
}
