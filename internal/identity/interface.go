package identity

import "time"

// Principal is the verified identity of a caller. Authorization flags live on
// the stored user, not on the token.
type Principal struct {
	UserID   string
	Name     string
	Email    string
	PhotoURL string
}

// Provider verifies bearer tokens and mints new ones. Verification failures
// never abort a request; the caller proceeds as anonymous.
type Provider interface {
	Verify(token string) (*Principal, error)
	Issue(p Principal, ttl time.Duration) (string, error)
}
