package auth

// Identity is the authenticated caller extracted from a verified session
// token. It is produced by the session middleware and passed explicitly into
// services and guards; handlers never dig claims out of ambient request
// state.
type Identity struct {
	UserID string
	Email  string
}
