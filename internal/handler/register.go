package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/infrastructure/redis"
	"github.com/eshift/customer-core/internal/service"
)

// RegisterRequest carries a candidate registration
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// RegisterHandler handles customer self-registration
type RegisterHandler struct {
	customerService *service.CustomerService
	cache           *redis.Client
	logger          *slog.Logger
}

// NewRegisterHandler creates a new registration handler. cache may be nil.
func NewRegisterHandler(customerService *service.CustomerService, cache *redis.Client, logger *slog.Logger) *RegisterHandler {
	return &RegisterHandler{
		customerService: customerService,
		cache:           cache,
		logger:          logger,
	}
}

// ServeHTTP handles POST /api/customers requests
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode register request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	customer, err := h.customerService.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		h.respondRegisterError(w, err)
		return
	}

	invalidateListing(r.Context(), h.cache, h.logger)
	writeJSON(w, http.StatusCreated, customer)
}

func (h *RegisterHandler) respondRegisterError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "validation failed",
			"messages": validationErr.Messages,
		})
		return
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": conflict.Error(),
			"kind":  string(conflict.Kind),
		})
		return
	}

	h.logger.Error("registration failed", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, "registration failed")
}

// invalidateListing drops the cached admin listing after a mutation. Cache
// trouble is logged, never surfaced: the store already committed.
func invalidateListing(ctx context.Context, cache *redis.Client, logger *slog.Logger) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, listCacheKey); err != nil {
		logger.Warn("failed to invalidate listing cache", slog.String("error", err.Error()))
	}
}
