package payments

import (
	"encoding/json"
	"net/http"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the payments module.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the public webhook route. The endpoint is
// authenticated by the payload signature, not by a session.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.ProcessPayment)
}

// RegisterProtectedRoutes registers routes available to authenticated users.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/payments/me", h.MyPayments)
}

// PaymentRequest represents a payment webhook body.
type PaymentRequest struct {
	TransactionID string  `json:"transaction_id" validate:"required,uuid"`
	UserID        int64   `json:"user_id" validate:"required,gt=0"`
	AccountID     int64   `json:"account_id" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Signature     string  `json:"signature" validate:"required"`
}

// ProcessPayment handles POST /payments.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	transactionID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	err = h.service.ProcessPayment(r.Context(), PaymentInput{
		TransactionID: transactionID,
		UserID:        req.UserID,
		AccountID:     req.AccountID,
		Amount:        req.Amount,
		Signature:     req.Signature,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, map[string]string{
		"message": "payment was successfully processed",
	})
}

// MyPayments handles GET /payments/me.
func (h *Handler) MyPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if httputil.GetRole(r.Context()) == domain.RoleAdmin {
		httputil.Error(w, http.StatusForbidden, ErrAdminPayment.Error())
		return
	}

	payments, err := h.service.GetUserPayments(r.Context(), userID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, payments)
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrUserNotFound, Status: http.StatusNotFound},
		{Error: ErrAdminPayment, Status: http.StatusForbidden},
		{Error: ErrBadSignature, Status: http.StatusBadRequest},
		{Error: ErrDuplicateTransaction, Status: http.StatusBadRequest},
		{Error: ErrAccountOwnership, Status: http.StatusBadRequest},
		{Error: ErrNoPayments, Status: http.StatusNotFound},
	})
}
