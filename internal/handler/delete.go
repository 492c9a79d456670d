package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eshift/customer-core/internal/domain"
	"github.com/eshift/customer-core/internal/infrastructure/redis"
	"github.com/eshift/customer-core/internal/security/audit"
	"github.com/eshift/customer-core/internal/security/middleware"
	"github.com/eshift/customer-core/internal/service"
)

// DeleteHandler handles admin customer deletion requests
type DeleteHandler struct {
	customerService *service.CustomerService
	cache           *redis.Client
	auditLog        *audit.Logger
	logger          *slog.Logger
}

// NewDeleteHandler creates a new delete handler. cache may be nil.
func NewDeleteHandler(customerService *service.CustomerService, cache *redis.Client, auditLog *audit.Logger, logger *slog.Logger) *DeleteHandler {
	return &DeleteHandler{
		customerService: customerService,
		cache:           cache,
		auditLog:        auditLog,
		logger:          logger,
	}
}

// ServeHTTP handles DELETE /api/customers/{id} requests
func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	customerID, err := customerIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	actor := ""
	if claims := middleware.GetClaimsFromContext(r.Context()); claims != nil {
		actor = claims.Email
	}

	if err := h.customerService.Delete(r.Context(), customerID); err != nil {
		h.respondDeleteError(w, r, actor, customerID, err)
		return
	}

	h.auditLog.LogDeletion(r.Context(), actor, strconv.FormatInt(customerID, 10), "success", "")
	invalidateListing(r.Context(), h.cache, h.logger)
	w.WriteHeader(http.StatusNoContent)
}

func (h *DeleteHandler) respondDeleteError(w http.ResponseWriter, r *http.Request, actor string, customerID int64, err error) {
	id := strconv.FormatInt(customerID, 10)

	var precondition *domain.PreconditionError
	if errors.As(err, &precondition) {
		h.auditLog.LogDeletion(r.Context(), actor, id, "blocked", "customer has associated jobs")
		writeError(w, http.StatusConflict, precondition.Error())
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "customer not found")
		return
	}

	h.auditLog.LogDeletion(r.Context(), actor, id, "error", err.Error())
	h.logger.Error("failed to delete customer",
		slog.Int64("customer_id", customerID),
		slog.String("error", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "failed to delete customer")
}
