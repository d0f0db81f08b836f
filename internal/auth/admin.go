package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminGate checks the shared dashboard password.
type AdminGate struct {
	hash []byte
}

// NewAdminGate hashes the configured admin password once at start-up.
func NewAdminGate(password string) (*AdminGate, error) {
	if password == "" {
		return nil, fmt.Errorf("admin password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &AdminGate{hash: hash}, nil
}

// Check reports whether password unlocks the admin dashboard.
func (g *AdminGate) Check(password string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
}
