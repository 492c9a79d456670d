package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/eshift/customer-core/internal/domain"
)

func TestAsConflictEmail(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pq.Error{Code: uniqueViolation, Constraint: emailConstraint})
	conflict := asConflict(err)
	if conflict == nil || conflict.Kind != domain.ConflictEmailTaken {
		t.Fatalf("expected email conflict, got %v", conflict)
	}
}

func TestAsConflictCustomerNumber(t *testing.T) {
	conflict := asConflict(&pq.Error{Code: uniqueViolation, Constraint: numberConstraint})
	if conflict == nil || conflict.Kind != domain.ConflictNumberCollision {
		t.Fatalf("expected number conflict, got %v", conflict)
	}
}

func TestAsConflictByDetail(t *testing.T) {
	// Older schemas may carry differently named constraints; the key column
	// still shows up in the error detail.
	conflict := asConflict(&pq.Error{Code: uniqueViolation, Detail: "Key (email)=(jane@example.com) already exists."})
	if conflict == nil || conflict.Kind != domain.ConflictEmailTaken {
		t.Fatalf("expected email conflict, got %v", conflict)
	}
}

func TestAsConflictIgnoresOtherErrors(t *testing.T) {
	if asConflict(errors.New("connection refused")) != nil {
		t.Fatalf("plain error must not map to a conflict")
	}
	if asConflict(&pq.Error{Code: "23503"}) != nil {
		t.Fatalf("foreign key violation must not map to a conflict")
	}
	if asConflict(&pq.Error{Code: uniqueViolation, Constraint: "other_key"}) != nil {
		t.Fatalf("unknown unique constraint must not map to a conflict")
	}
}
