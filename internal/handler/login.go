package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/eshift/customer-core/internal/security/auth"
	"github.com/eshift/customer-core/internal/service"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse contains the JWT token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
}

// LoginHandler authenticates admins and customers
type LoginHandler struct {
	tokenManager    *auth.TokenManager
	adminStore      *auth.AdminStore
	customerService *service.CustomerService
	tokenLifetime   time.Duration
	logger          *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(
	tm *auth.TokenManager,
	admins *auth.AdminStore,
	customerService *service.CustomerService,
	tokenLifetime time.Duration,
	logger *slog.Logger,
) *LoginHandler {
	return &LoginHandler{
		tokenManager:    tm,
		adminStore:      admins,
		customerService: customerService,
		tokenLifetime:   tokenLifetime,
		logger:          logger,
	}
}

// ServeHTTP handles POST /api/login requests
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	// Operator accounts take precedence; they are configured, not
	// self-registered, so the namespaces cannot overlap in practice.
	if admin, err := h.adminStore.Authenticate(req.Email, req.Password); err == nil {
		h.respondWithToken(w, auth.RoleAdmin, 0, admin.Email)
		return
	}

	customer, err := h.customerService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error("credential lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "authentication unavailable")
		return
	}
	if customer == nil {
		// Generic error to prevent account enumeration
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.logger.Info("customer logged in",
		slog.Int64("customer_id", customer.ID),
		slog.String("email", customer.Email),
	)
	h.respondWithToken(w, auth.RoleCustomer, customer.ID, customer.Email)
}

func (h *LoginHandler) respondWithToken(w http.ResponseWriter, role string, customerID int64, email string) {
	token, err := h.tokenManager.GenerateToken(role, customerID, email, h.tokenLifetime)
	if err != nil {
		h.logger.Error("failed to generate token",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenLifetime),
		Role:      role,
		Email:     email,
	})
}
