package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Admin represents an operator account allowed to list and delete customers.
type Admin struct {
	Email        string
	PasswordHash string
	Active       bool
}

// AdminStore manages operator authentication. Admin accounts are configured
// at startup, not self-registered.
type AdminStore struct {
	mu     sync.RWMutex
	admins map[string]*Admin // email -> admin
}

// NewAdminStore creates an empty admin store
func NewAdminStore() *AdminStore {
	return &AdminStore{admins: make(map[string]*Admin)}
}

// AddAdmin adds an operator account with a bcrypt-hashed password.
func (s *AdminStore) AddAdmin(email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[email] = &Admin{
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
	}
	return nil
}

// Authenticate verifies operator credentials with a constant-time hash
// comparison.
func (s *AdminStore) Authenticate(email, password string) (*Admin, error) {
	s.mu.RLock()
	admin, exists := s.admins[email]
	s.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("admin not found")
	}
	if !admin.Active {
		return nil, fmt.Errorf("admin inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid password")
	}
	return admin, nil
}
