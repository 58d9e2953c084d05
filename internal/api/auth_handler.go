package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/cardsort-api/internal/api/shared"
	"github.com/phrazzld/cardsort-api/internal/config"
	"github.com/phrazzld/cardsort-api/internal/platform/logger"
	"github.com/phrazzld/cardsort-api/internal/service"
	"github.com/phrazzld/cardsort-api/internal/service/auth"
	"github.com/phrazzld/cardsort-api/internal/store"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	userService      service.UserService
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	authConfig       *config.AuthConfig
	logger           *slog.Logger
	now              func() time.Time
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	authConfig *config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService:      userService,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		authConfig:       authConfig,
		logger:           logger.With(slog.String("component", "auth_handler")),
		now:              time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.CreateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	h.respondWithToken(w, r, http.StatusCreated, user.ID)
}

// Login handles POST /api/auth/login. Unknown emails and wrong passwords
// produce the same 401 response.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if store.IsNotFoundError(err) {
			HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
			return
		}
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.passwordVerifier.Compare(user.HashedPassword, req.Password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		HandleAPIError(w, r, auth.ErrInvalidCredentials, "")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user.ID)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, userID uuid.UUID) {
	token, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	resp := AuthResponse{UserID: userID, AccessToken: token}
	if h.authConfig != nil && h.authConfig.TokenLifetimeMinutes > 0 {
		lifetime := time.Duration(h.authConfig.TokenLifetimeMinutes) * time.Minute
		resp.ExpiresAt = h.now().UTC().Add(lifetime).Format(time.RFC3339)
	}

	shared.RespondWithJSON(w, r, status, resp)
}
