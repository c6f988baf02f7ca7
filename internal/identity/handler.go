package identity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/akulikov/walletd/internal/domain"
	"github.com/akulikov/walletd/internal/pkg/ctxlog"
	"github.com/akulikov/walletd/internal/pkg/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// CookieSettings contains settings for authentication cookies.
type CookieSettings struct {
	Secure               bool
	Domain               string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// Handler handles HTTP requests for the identity module.
type Handler struct {
	service        *Service
	validator      *validator.Validate
	cookieSettings CookieSettings
	loginLimiter   func(http.Handler) http.Handler
}

// NewHandler creates a new identity handler. loginLimiter guards the
// login endpoint and may be nil.
func NewHandler(service *Service, cookieSettings CookieSettings, loginLimiter func(http.Handler) http.Handler) (*Handler, error) {
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		return nil, err
	}

	if loginLimiter == nil {
		loginLimiter = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{
		service:        service,
		validator:      v,
		cookieSettings: cookieSettings,
		loginLimiter:   loginLimiter,
	}, nil
}

// RegisterRoutes registers public identity routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.With(h.loginLimiter).Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
	})
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

// RegisterAdminRoutes registers user management routes. The caller is
// expected to guard them with the admin role middleware.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})
}

// LoginRequest represents login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents login response.
type LoginResponse struct {
	User   *UserView  `json:"user"`
	Tokens *TokenPair `json:"tokens"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), LoginInput(req))
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	h.setAuthCookies(w, tokens)

	httputil.Success(w, http.StatusOK, LoginResponse{
		User:   NewUserView(user),
		Tokens: tokens,
	})
}

// RefreshResponse represents refresh response.
type RefreshResponse struct {
	Tokens *TokenPair `json:"tokens"`
}

// Refresh handles POST /auth/refresh.
// Reads the refresh token from cookie or body, rotates the pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.getRefreshTokenFromRequest(r)
	if refreshToken == "" {
		httputil.Error(w, http.StatusBadRequest, "missing refresh token")
		return
	}

	tokens, err := h.service.RefreshTokens(r.Context(), refreshToken)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	h.setAuthCookies(w, tokens)

	httputil.Success(w, http.StatusOK, RefreshResponse{Tokens: tokens})
}

// Logout handles POST /auth/logout.
// Invalidates the refresh token and clears all auth cookies.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.getRefreshTokenFromRequest(r)
	if refreshToken != "" {
		if err := h.service.Logout(r.Context(), refreshToken); err != nil {
			ctxlog.FromContext(r.Context()).Warn("logout error", "error", err)
		}
	}

	h.clearAuthCookies(w)

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, NewUserView(user))
}

// CreateUserRequest represents admin user creation body. The duplicated
// password fields mirror the external registration contract.
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required,full_name"`
	Password1 string `json:"password1" validate:"required,password_strength"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password1,
	})
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusCreated, NewUserView(user))
}

// GetUser handles GET /users/{userID}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, NewUserView(user))
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	views := make([]*UserView, 0, len(users))
	for i := range users {
		views = append(views, NewUserView(&users[i]))
	}

	httputil.Success(w, http.StatusOK, views)
}

// UpdateUserRequest represents admin user update body. All fields are
// optional but at least one must be present.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FullName  *string `json:"full_name" validate:"omitempty,full_name"`
	Password1 *string `json:"password1" validate:"omitempty,password_strength"`
	Password2 *string `json:"password2"`
}

// UpdateUser handles PATCH /users/{userID}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	input := UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password1,
	}
	if input.IsEmpty() {
		httputil.Error(w, http.StatusBadRequest, "at least one parameter must be provided")
		return
	}

	if req.Password1 != nil && (req.Password2 == nil || *req.Password1 != *req.Password2) {
		httputil.Error(w, http.StatusBadRequest, "the passwords do not match")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	httputil.Success(w, http.StatusOK, NewUserView(user))
}

// DeleteUser handles DELETE /users/{userID}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.handleServiceError(r, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		httputil.Error(w, http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// setAuthCookies sets access_token, refresh_token, and csrf_token cookies.
func (h *Handler) setAuthCookies(w http.ResponseWriter, tokens *TokenPair) {
	// Access token cookie - available to all paths
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.AccessTokenCookie,
		Value:    tokens.AccessToken,
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   int(h.cookieSettings.AccessTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	// Refresh token cookie - only for /api/v1/auth paths
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/api/v1/auth",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   int(h.cookieSettings.RefreshTokenDuration.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	// CSRF token cookie - readable by JavaScript
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.CSRFTokenCookie,
		Value:    httputil.GenerateCSRFToken(),
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   int(h.cookieSettings.AccessTokenDuration.Seconds()),
		HttpOnly: false, // Must be readable by JavaScript
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearAuthCookies removes all auth cookies by setting Max-Age=0.
func (h *Handler) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     httputil.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     httputil.RefreshTokenCookie,
		Value:    "",
		Path:     "/api/v1/auth",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     httputil.CSRFTokenCookie,
		Value:    "",
		Path:     "/",
		Domain:   h.cookieSettings.Domain,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   h.cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// getRefreshTokenFromRequest extracts refresh token from cookie or request
// body (for API clients without a cookie jar).
func (h *Handler) getRefreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(httputil.RefreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken
	}

	return ""
}

func (h *Handler) handleServiceError(r *http.Request, w http.ResponseWriter, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrUserNotFound, Status: http.StatusNotFound},
		{Error: ErrNoUsers, Status: http.StatusNotFound},
		{Error: ErrEmailExists, Status: http.StatusConflict},
		{Error: ErrInvalidCredentials, Status: http.StatusUnauthorized},
		{Error: ErrInvalidToken, Status: http.StatusUnauthorized},
		{Error: ErrAdminTarget, Status: http.StatusForbidden},
	})
}

// UserView is the public representation of a user.
type UserView struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// NewUserView builds a UserView from a domain user.
func NewUserView(u *domain.User) *UserView {
	return &UserView{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     string(u.Role),
	}
}
