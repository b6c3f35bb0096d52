package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/middleware/auth"
	"github.com/adelante-org/impact-api/internal/response"
	"github.com/adelante-org/impact-api/internal/storage/postgres"
	"github.com/adelante-org/impact-api/internal/validation"
)

// AuthHandler serves login for the admin surface
type AuthHandler struct {
	userRepo postgres.UserRepository
	tokens   *auth.TokenManager
	log      *log.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userRepo postgres.UserRepository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokens:   tokens,
		log:      logger.Handler("auth"),
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
//
// Unknown accounts and wrong passwords get the same answer so the endpoint
// does not leak which usernames exist.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "username and password are required")
		return
	}

	v := validation.LoginValidation{}
	if err := v.ValidateCredentials(req.Username, req.Password); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	user, err := h.userRepo.GetByUsername(req.Username)
	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			response.UnauthorizedError(c, "invalid credentials")
			return
		}
		h.log.Error("Failed to look up login account", "error", err)
		response.InternalServerError(c, "login failed")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.log.Debug("Password mismatch", "username", req.Username)
		response.UnauthorizedError(c, "invalid credentials")
		return
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		h.log.Error("Failed to issue token", "error", err)
		response.InternalServerError(c, "login failed")
		return
	}

	h.log.Info("Login succeeded", "username", user.Username, "role", user.Role)
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"role":       user.Role,
	})
}
