package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/security/audit"
	"github.com/eshift/customer-core/internal/security/auth"
	"github.com/eshift/customer-core/internal/service"
)

type fakeRepo struct {
	nextID    int64
	customers map[int64]*domain.Customer
	jobs      map[int64]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: map[int64]*domain.Customer{}, jobs: map[int64]bool{}}
}

func (f *fakeRepo) Insert(_ context.Context, c *domain.Customer) error {
	for _, existing := range f.customers {
		if existing.Email == c.Email {
			return &domain.ConflictError{Kind: domain.ConflictEmailTaken}
		}
	}
	f.nextID++
	c.ID = f.nextID
	c.RegistrationDate = time.Now()
	f.customers[c.ID] = c
	return nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range f.customers {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListAll(_ context.Context) ([]*domain.Customer, error) {
	out := make([]*domain.Customer, 0, len(f.customers))
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.customers[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasDependents(_ context.Context, customerID int64) (bool, error) {
	return f.jobs[customerID], nil
}

func (f *fakeRepo) Delete(_ context.Context, customerID int64) error {
	if _, ok := f.customers[customerID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.customers, customerID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(t *testing.T, repo *fakeRepo) *http.ServeMux {
	t.Helper()

	log := testLogger()
	svc := service.NewCustomerService(repo, nil, nil, log)

	tm := auth.NewTokenManager("test-secret", "eshift")
	admins := auth.NewAdminStore()
	if err := admins.AddAdmin("admin@e-shift.example", "Adm1n!Pazz"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/customers", NewRegisterHandler(svc, nil, log))
	mux.Handle("GET /api/customers", NewCustomersHandler(svc, nil, time.Second, log))
	mux.Handle("GET /api/customers/{id}/can-delete", NewCanDeleteHandler(svc, log))
	mux.Handle("DELETE /api/customers/{id}", NewDeleteHandler(svc, nil, audit.NewLogger(log), log))
	mux.Handle("POST /api/login", NewLoginHandler(tm, admins, svc, time.Hour, log))
	return mux
}

func doJSON(mux *http.ServeMux, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	mux := newTestMux(t, newFakeRepo())

	rec := doJSON(mux, http.MethodPost, "/api/customers", map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "Str0ng!Pazz",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.Customer
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if created.ID == 0 || created.CustomerNumber == "" {
		t.Fatalf("expected populated customer, got %+v", created)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("Str0ng!Pazz")) {
		t.Fatalf("response must not leak the password")
	}
}

func TestRegisterEndpointValidationFailure(t *testing.T) {
	mux := newTestMux(t, newFakeRepo())

	rec := doJSON(mux, http.MethodPost, "/api/customers", map[string]string{
		"firstName": "J",
		"lastName":  "Doe",
		"email":     "not-an-email",
		"password":  "weak",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Error    string   `json:"error"`
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Messages) < 3 {
		t.Fatalf("expected accumulated messages, got %v", resp.Messages)
	}
}

func TestRegisterEndpointEmailConflict(t *testing.T) {
	mux := newTestMux(t, newFakeRepo())

	payload := map[string]string{
		"firstName": "Jane",
		"lastName":  "Doe",
		"email":     "jane@example.com",
		"password":  "Str0ng!Pazz",
	}
	if rec := doJSON(mux, http.MethodPost, "/api/customers", payload); rec.Code != http.StatusCreated {
		t.Fatalf("first register failed: %d", rec.Code)
	}

	rec := doJSON(mux, http.MethodPost, "/api/customers", payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["kind"] != "email_taken" {
		t.Fatalf("expected email_taken kind, got %q", resp["kind"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	repo := newFakeRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("Str0ng!Pazz"), bcrypt.MinCost)
	repo.customers[1] = &domain.Customer{
		ID:           1,
		Email:        "jane@example.com",
		PasswordHash: string(hash),
	}
	repo.nextID = 1
	mux := newTestMux(t, repo)

	rec := doJSON(mux, http.MethodPost, "/api/login", map[string]string{
		"email":    "jane@example.com",
		"password": "Str0ng!Pazz",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token == "" || resp.Role != auth.RoleCustomer {
		t.Fatalf("expected customer token, got %+v", resp)
	}

	// Wrong password and unknown account produce the same response.
	recWrong := doJSON(mux, http.MethodPost, "/api/login", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	recUnknown := doJSON(mux, http.MethodPost, "/api/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "wrong",
	})
	if recWrong.Code != http.StatusUnauthorized || recUnknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d and %d", recWrong.Code, recUnknown.Code)
	}
	if recWrong.Body.String() != recUnknown.Body.String() {
		t.Fatalf("bad-credential responses must be indistinguishable")
	}
}

func TestLoginEndpointAdmin(t *testing.T) {
	mux := newTestMux(t, newFakeRepo())

	rec := doJSON(mux, http.MethodPost, "/api/login", map[string]string{
		"email":    "admin@e-shift.example",
		"password": "Adm1n!Pazz",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Role string `json:"role"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Role != auth.RoleAdmin {
		t.Fatalf("expected admin role, got %q", resp.Role)
	}
}

func TestListEndpoint(t *testing.T) {
	repo := newFakeRepo()
	mux := newTestMux(t, repo)

	rec := doJSON(mux, http.MethodGet, "/api/customers", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var listing struct {
		Customers []*domain.Customer `json:"customers"`
		Count     int                `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Customers == nil || listing.Count != 0 {
		t.Fatalf("empty store must list as empty array, got %s", rec.Body.String())
	}
}

func TestCanDeleteEndpoint(t *testing.T) {
	repo := newFakeRepo()
	repo.nextID = 2
	repo.customers[1] = &domain.Customer{ID: 1, Email: "a@example.com"}
	repo.customers[2] = &domain.Customer{ID: 2, Email: "b@example.com"}
	repo.jobs[2] = true
	mux := newTestMux(t, repo)

	rec := doJSON(mux, http.MethodGet, "/api/customers/1/can-delete", nil)
	var resp map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || !resp["canDelete"] {
		t.Fatalf("expected canDelete true, got %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(mux, http.MethodGet, "/api/customers/2/can-delete", nil)
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if rec.Code != http.StatusOK || resp["canDelete"] {
		t.Fatalf("expected canDelete false, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteEndpoint(t *testing.T) {
	repo := newFakeRepo()
	repo.nextID = 2
	repo.customers[1] = &domain.Customer{ID: 1, Email: "a@example.com"}
	repo.customers[2] = &domain.Customer{ID: 2, Email: "b@example.com"}
	repo.jobs[2] = true
	mux := newTestMux(t, repo)

	if rec := doJSON(mux, http.MethodDelete, "/api/customers/1", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(mux, http.MethodDelete, "/api/customers/2", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for customer with jobs, got %d", rec.Code)
	}
	if rec := doJSON(mux, http.MethodDelete, "/api/customers/99", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := doJSON(mux, http.MethodDelete, "/api/customers/abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}
