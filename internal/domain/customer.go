package domain

import (
	"context"
	"time"
)

// Customer represents a registered customer
type Customer struct {
	ID               int64     `json:"id"`                 // Database-assigned identity, never reused
	CustomerNumber   string    `json:"customerNumber"`     // Business-facing unique identifier
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	Email            string    `json:"email"`              // Unique, stored lowercase
	Phone            *string   `json:"phone,omitempty"`    // Optional
	Address          *string   `json:"address,omitempty"`  // Optional
	PasswordHash     string    `json:"-"`                  // Bcrypt hash, never serialized
	RegistrationDate time.Time `json:"registrationDate"`   // Set by the store at insert time
}

// CustomerRepository defines data access for customers.
// Uniqueness of email and customer_number is enforced by the store, not here:
// Insert surfaces a ConflictError when a constraint fires. Absence is a
// (nil, nil) result, never an error.
type CustomerRepository interface {
	Insert(ctx context.Context, customer *Customer) error
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	ListAll(ctx context.Context) ([]*Customer, error)
	HasDependents(ctx context.Context, customerID int64) (bool, error)
	Delete(ctx context.Context, customerID int64) error
}

// NotificationSink delivers a welcome notification for a committed
// registration. Failures are observable but never fatal to the registration.
type NotificationSink interface {
	SendWelcome(ctx context.Context, customer *Customer) error
}

// EventPublisher broadcasts customer lifecycle events to connected admins.
type EventPublisher interface {
	CustomerRegistered(customer *Customer)
	CustomerDeleted(customerID int64)
}
