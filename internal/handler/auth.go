package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"pedidos-api/internal/entities"
	"pedidos-api/internal/middleware"
	"pedidos-api/internal/service"
	"pedidos-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (string, service.TokenPayload, error)
}

type AuthHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	auth     Authenticator
}

func NewAuthHandler(logger *slog.Logger, auth Authenticator) *AuthHandler {
	return &AuthHandler{
		logger:   logger.With(slog.String("handler", "auth")),
		validate: validator.New(),
		auth:     auth,
	}
}

func (h *AuthHandler) Init(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// Login exchanges credentials for a signed token.
// @Summary      Log in
// @Description  Checks the configured development credentials and returns a signed token. The same token is set as an httpOnly cookie whose expiry equals the token's own exp claim.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  utils.ErrorResponse "Malformed body"
// @Failure      401  {object}  utils.ErrorResponse "Invalid credentials"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req LoginRequest
	if err := utils.DecodeBodyStrict(r, &req); err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("invalid login payload", nil))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteDomainError(w, entities.NewValidationError("username and password are required", nil))
		return
	}

	token, payload, err := h.auth.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		var domainErr *entities.Error
		if !errors.As(err, &domainErr) {
			h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		}
		utils.WriteDomainError(w, err)
		return
	}

	// Cookie lifetime comes from the token's own exp claim so both always
	// expire at the same instant.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  payload.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSON(w, LoginResponse{
		Token:       token,
		ExpiresInMs: payload.ExpiresAt.Sub(payload.IssuedAt).Milliseconds(),
	}, http.StatusOK)
}
