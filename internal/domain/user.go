package domain

// User is the identity extracted from a verified JWT. Tokens are minted by
// the shared identity service; this backend only validates them.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type contextKey string

// UserContextKey is the request-context key for the authenticated user.
const UserContextKey contextKey = "user"
