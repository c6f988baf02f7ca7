package accounts

import (
	"net/http"
	"strconv"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP requests for the accounts module.
type Handler struct {
	service *Service
}

// NewHandler creates a new accounts handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterProtectedRoutes registers routes available to authenticated users.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/accounts/me", h.MyAccounts)
}

// RegisterAdminRoutes registers admin account lookups.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/users/{userID}/accounts", h.UserAccounts)
}

// MyAccounts handles GET /accounts/me.
func (h *Handler) MyAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if httputil.GetRole(r.Context()) == domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, ErrAdminAccount.Error())
		return
	}

	accounts, err := h.service.GetUserAccounts(r.Context(), userID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, accounts)
}

// UserAccounts handles GET /users/{userID}/accounts.
func (h *Handler) UserAccounts(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || targetID <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	accounts, err := h.service.GetAccountsForUser(r.Context(), targetID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, accounts)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrNoAccounts, Status: http.StatusNotFound},
		{Error: ErrUserNotFound, Status: http.StatusNotFound},
		{Error: ErrAdminAccount, Status: http.StatusForbidden},
	})
}
