package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher performs bcrypt password hashing and verification. bcrypt embeds a
// random per-call salt in the digest and its cost factor makes brute force
// expensive. A bounded slot pool caps how many hashes run at once so a burst
// of signups cannot saturate every CPU; waiting honors ctx cancellation.
type Hasher struct {
	cost  int
	slots chan struct{}
}

// NewHasher constructs a Hasher with the given bcrypt cost and concurrency
// limit.
func NewHasher(cost int, maxConcurrent int) *Hasher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Hasher{
		cost:  cost,
		slots: make(chan struct{}, maxConcurrent),
	}
}

// Hash derives an opaque salted digest from the plaintext password. The
// plaintext is never logged or stored.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	select {
	case h.slots <- struct{}{}:
		defer func() { <-h.slots }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext password matches the digest. A wrong
// password is a normal false result; an error means the digest itself is
// unusable. bcrypt's comparison does not expose where a mismatch occurred.
// Verification is as expensive as hashing, so it takes a slot from the same
// bounded pool.
func (h *Hasher) Verify(ctx context.Context, password string, digest string) (bool, error) {
	select {
	case h.slots <- struct{}{}:
		defer func() { <-h.slots }()
	case <-ctx.Done():
		return false, ctx.Err()
	}

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verifying password: %w", err)
}
