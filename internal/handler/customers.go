package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/infrastructure/redis"
	"github.com/eshift/customer-core/internal/service"
)

// CustomersHandler serves the admin customer listing, with the serialized
// response cached in Redis between mutations.
type CustomersHandler struct {
	customerService *service.CustomerService
	cache           *redis.Client
	cacheTTL        time.Duration
	logger          *slog.Logger
}

// NewCustomersHandler creates a new listing handler. cache may be nil.
func NewCustomersHandler(customerService *service.CustomerService, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *CustomersHandler {
	return &CustomersHandler{
		customerService: customerService,
		cache:           cache,
		cacheTTL:        cacheTTL,
		logger:          logger,
	}
}

// ServeHTTP handles GET /api/customers requests
func (h *CustomersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.cache != nil {
		if cached, err := h.cache.Get(r.Context(), listCacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	customers, err := h.customerService.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list customers", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	if customers == nil {
		customers = []*domain.Customer{}
	}

	body, err := json.Marshal(struct {
		Customers []*domain.Customer `json:"customers"`
		Count     int                `json:"count"`
	}{Customers: customers, Count: len(customers)})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode customers")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), listCacheKey, body, h.cacheTTL); err != nil {
			h.logger.Warn("failed to cache listing", slog.String("error", err.Error()))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// CanDeleteHandler answers whether a customer is free of dependent jobs.
type CanDeleteHandler struct {
	customerService *service.CustomerService
	logger          *slog.Logger
}

// NewCanDeleteHandler creates a new can-delete handler
func NewCanDeleteHandler(customerService *service.CustomerService, logger *slog.Logger) *CanDeleteHandler {
	return &CanDeleteHandler{
		customerService: customerService,
		logger:          logger,
	}
}

// ServeHTTP handles GET /api/customers/{id}/can-delete requests
func (h *CanDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	customerID, err := customerIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	canDelete, err := h.customerService.CanDelete(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to check dependents",
			slog.Int64("customer_id", customerID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to check dependents")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"canDelete": canDelete})
}

func customerIDFromPath(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.New("missing customer id")
	}
	return strconv.ParseInt(raw, 10, 64)
}
