package handler

import (
	"errors"

	"github.com/energy-data-api/internal/middleware"
	"github.com/energy-data-api/internal/service"
	"github.com/energy-data-api/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the auth endpoints
func (h *AuthHandler) RegisterRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)

	protected := r.Group("/", authMiddleware)
	protected.GET("/users", h.ListUsers)
	protected.GET("/me", h.Me)
}

// Register handles user registration
// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.authService.Register(&req); err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, "Email already registered")
			return
		}
		response.InternalError(c, "failed to register user")
		return
	}

	response.Message(c, "User created successfully")
}

// Login handles user login
// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	token, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "Incorrect email or password")
			return
		}
		response.InternalError(c, "failed to login")
		return
	}

	response.JSON(c, token)
}

// ListUsers returns the emails of all registered users
// GET /users (admin bearer token)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	subject := middleware.GetSubject(c)

	emails, err := h.authService.ListEmails(subject)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "User not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "admin access required")
		default:
			response.InternalError(c, "failed to list users")
		}
		return
	}

	response.JSON(c, gin.H{"emails": emails})
}

// Me returns the authenticated user's email
// GET /me (bearer token)
func (h *AuthHandler) Me(c *gin.Context) {
	subject := middleware.GetSubject(c)

	user, err := h.authService.GetUserByEmail(subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		response.InternalError(c, "failed to load user")
		return
	}

	response.JSON(c, gin.H{"email": user.Email})
}
