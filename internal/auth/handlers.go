package auth

import (
	"context"

	"homeward-backend/internal/middleware"
	"homeward-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder UserFinder
	DB         *gorm.DB
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

// Login POST /api/v1/auth/login — authenticate, create session, track it in
// user_sessions:<id>, set cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.Email == "" || req.Password == "" {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByEmailAndPassword(req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrInvalidEmail, ErrIncorrectPassword:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	return h.startSession(c, user.UserID.String(), user.Fullname, user.Email, false)
}

// Register POST /api/v1/auth/register — create user and log them in.
func (h *Handlers) Register(c *fiber.Ctx) error {
	if h.DB == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, ErrEmailPasswordRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := RegisterUser(h.DB, req)
	if err != nil {
		switch err {
		case ErrEmailPasswordRequired, ErrInvalidEmail, ErrInvalidFullname, ErrWeakPassword:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case ErrEmailTaken:
			return response.Error(c, err.Error(), fiber.StatusConflict, nil)
		default:
			log.Error().Err(err).Msg("auth/register failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}

	return h.startSession(c, user.UserID.String(), user.Fullname, user.Email, true)
}

func (h *Handlers) startSession(c *fiber.Ctx, userID, fullname, email string, created bool) error {
	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   userID,
		Fullname: fullname,
		Email:    email,
	})

	if err := h.Rdb.SAdd(context.Background(), userSessionsPrefix+userID, sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	data := fiber.Map{"user": fiber.Map{
		"user_id":  userID,
		"fullname": fullname,
		"email":    email,
	}}
	if created {
		return response.SuccessCreated(c, "Registration successful", data, nil)
	}
	return response.Success(c, "Login successful", data, nil)
}

// Me GET /api/v1/auth/me — return current session user.
func (h *Handlers) Me(c *fiber.Ctx) error {
	user, err := VerifyUser(middleware.GetUser(c))
	if err != nil {
		return response.Error(c, ErrNotAuthenticated.Error(), fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": user}, nil)
}

// Logout DELETE /api/v1/auth/logout — remove session tracking, delete the
// session key, clear cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	sessionUser := middleware.GetUser(c)
	ctx := context.Background()

	if sessionUser != nil && sessionID != "" {
		if m, ok := sessionUser.(map[string]interface{}); ok {
			if userID, _ := m["user_id"].(string); userID != "" {
				_ = h.Rdb.SRem(ctx, userSessionsPrefix+userID, sessionID).Err()
			}
		}
	}
	if sessionID != "" {
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}
	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
