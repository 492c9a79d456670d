package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/observability/metrics"
	"github.com/eshift/customer-core/internal/validation"
	"github.com/eshift/customer-core/pkg/cache"
)

// dependentsTTL bounds staleness of the can-delete answer shown to admins.
// Delete never trusts this cache; it re-queries the store.
const dependentsTTL = 30 * time.Second

// WelcomeNotifier accepts a committed registration for asynchronous welcome
// delivery. Implementations must not block the caller.
type WelcomeNotifier interface {
	Enqueue(customer *domain.Customer)
}

// CustomerService orchestrates registration, authentication, listing and
// safe deletion of customers.
type CustomerService struct {
	repo     domain.CustomerRepository
	notifier WelcomeNotifier
	events   domain.EventPublisher
	depCache *cache.Cache
	logger   *slog.Logger
}

// NewCustomerService creates a new customer service. notifier and events may
// be nil; the corresponding side effects are then skipped.
func NewCustomerService(
	repo domain.CustomerRepository,
	notifier WelcomeNotifier,
	events domain.EventPublisher,
	logger *slog.Logger,
) *CustomerService {
	if logger == nil {
		logger = slog.Default()
	}

	return &CustomerService{
		repo:     repo,
		notifier: notifier,
		events:   events,
		depCache: cache.New(),
		logger:   logger,
	}
}

// Register validates a candidate registration, persists it and queues the
// welcome notification. Validation failures never touch the store. A
// customer-number collision is retried once with a fresh number; an email
// conflict is surfaced immediately.
func (s *CustomerService) Register(ctx context.Context, firstName, lastName, email, password string) (*domain.Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))

	if res := validation.Validate(firstName, lastName, email, password); !res.OK {
		metrics.ObserveRegistration("validation_failed")
		return nil, &domain.ValidationError{Messages: res.Errors}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		metrics.ObserveRegistration("error")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	customer := &domain.Customer{
		CustomerNumber: NewCustomerNumber(),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		PasswordHash:   string(hash),
	}

	if err := s.repo.Insert(ctx, customer); err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) && conflict.Kind == domain.ConflictNumberCollision {
			// The number is random, so one regeneration is enough to rule
			// out bad luck; a second collision means something is wrong.
			s.logger.Warn("customer number collision, retrying with a fresh number",
				slog.String("customer_number", customer.CustomerNumber),
			)
			customer.CustomerNumber = NewCustomerNumber()
			err = s.repo.Insert(ctx, customer)
		}
		if err != nil {
			if errors.As(err, &conflict) {
				metrics.ObserveRegistration("conflict")
			} else {
				metrics.ObserveRegistration("error")
			}
			return nil, err
		}
	}

	s.logger.Info("customer registered",
		slog.Int64("customer_id", customer.ID),
		slog.String("customer_number", customer.CustomerNumber),
		slog.String("email", customer.Email),
	)
	metrics.ObserveRegistration("success")

	// The registration is committed; notification and event fan-out run
	// after the fact and must not affect the result.
	if s.notifier != nil {
		s.notifier.Enqueue(customer)
	}
	if s.events != nil {
		s.events.CustomerRegistered(customer)
	}

	return customer, nil
}

// Authenticate verifies credentials against the stored hash. An unknown
// email and a wrong password both yield (nil, nil): absence is a valid empty
// result, not an error, and the two cases are indistinguishable to callers.
func (s *CustomerService) Authenticate(ctx context.Context, email, password string) (*domain.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	customer, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		metrics.ObserveAuthentication("unknown_email")
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("authentication failed", slog.String("email", email))
		metrics.ObserveAuthentication("wrong_password")
		return nil, nil
	}

	metrics.ObserveAuthentication("success")
	return customer, nil
}

// ListAll returns every customer in store order.
func (s *CustomerService) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	return s.repo.ListAll(ctx)
}

// CanDelete reports whether the customer has no dependent job records.
// Results are cached briefly for the admin listing; Delete re-checks.
func (s *CustomerService) CanDelete(ctx context.Context, customerID int64) (bool, error) {
	key := dependentsKey(customerID)
	if v, ok := s.depCache.Get(key); ok {
		return v.(bool), nil
	}

	hasJobs, err := s.repo.HasDependents(ctx, customerID)
	if err != nil {
		return false, err
	}

	s.depCache.Set(key, !hasJobs, dependentsTTL)
	return !hasJobs, nil
}

// Delete removes a customer. The dependent-job check runs again here,
// against the store, regardless of any prior CanDelete call.
func (s *CustomerService) Delete(ctx context.Context, customerID int64) error {
	hasJobs, err := s.repo.HasDependents(ctx, customerID)
	if err != nil {
		return err
	}
	if hasJobs {
		s.depCache.Set(dependentsKey(customerID), false, dependentsTTL)
		metrics.ObserveDeletion("blocked")
		return &domain.PreconditionError{CustomerID: customerID}
	}

	if err := s.repo.Delete(ctx, customerID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			metrics.ObserveDeletion("error")
		}
		return err
	}

	s.depCache.Delete(dependentsKey(customerID))
	s.logger.Info("customer deleted", slog.Int64("customer_id", customerID))
	metrics.ObserveDeletion("success")

	if s.events != nil {
		s.events.CustomerDeleted(customerID)
	}

	return nil
}

func dependentsKey(customerID int64) string {
	return fmt.Sprintf("dependents:%d", customerID)
}

// NewCustomerNumber generates a business-facing customer number. The format
// is a short random token; uniqueness is guaranteed by the store constraint,
// not by the generator.
func NewCustomerNumber() string {
	id := uuid.New()
	return "CU-" + strings.ToUpper(id.String()[:8])
}
