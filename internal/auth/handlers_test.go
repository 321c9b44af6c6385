package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeward-backend/internal/domain"
	"homeward-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder for tests: returns the configured user or error.
type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByEmailAndPassword(email, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.user != nil && f.user.Email == email && password == "pa55word!" {
		return f.user, nil
	}
	if f.user != nil && f.user.Email == email {
		return nil, ErrIncorrectPassword
	}
	return nil, ErrInvalidEmail
}

func setupAuthHandlers(t *testing.T, finder UserFinder) (*fiber.App, *Handlers, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config:     middleware.SessionConfig{},
	}
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app, h, rdb
}

func trackedSessionID(t *testing.T, h *Handlers, userID string) string {
	t.Helper()
	members, err := h.Rdb.SMembers(context.Background(), "user_sessions:"+userID).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	return members[0]
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestLogin_MissingCredentials(t *testing.T) {
	app, _, _ := setupAuthHandlers(t, &fakeUserFinder{})
	resp := postJSON(t, app, "/login", map[string]string{"email": "a@b.com"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_WrongPassword(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Fullname: "Test User", Email: "a@b.com"}
	app, _, _ := setupAuthHandlers(t, &fakeUserFinder{user: u})
	resp := postJSON(t, app, "/login", map[string]string{"email": "a@b.com", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_SetsCookieAndTracksSession(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Fullname: "Test User", Email: "a@b.com"}
	app, h, _ := setupAuthHandlers(t, &fakeUserFinder{user: u})

	resp := postJSON(t, app, "/login", map[string]string{"email": "a@b.com", "password": "pa55word!"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	assert.Contains(t, cookies[0], middleware.SessionCookieName+"=")

	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "success", out["status"])
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, u.UserID.String(), user["user_id"])

	// Session id tracked in user_sessions:<id>
	members, err := h.Rdb.SMembers(context.Background(), "user_sessions:"+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestMe_WithSessionCookie(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Fullname: "Test User", Email: "a@b.com"}
	app, h, _ := setupAuthHandlers(t, &fakeUserFinder{user: u})

	login := postJSON(t, app, "/login", map[string]string{"email": "a@b.com", "password": "pa55word!"})
	require.Equal(t, fiber.StatusOK, login.StatusCode)
	sid := trackedSessionID(t, h, u.UserID.String())

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &out))
	user := out["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "a@b.com", user["email"])
}

func TestMe_NoSession(t *testing.T) {
	app, _, _ := setupAuthHandlers(t, &fakeUserFinder{})
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_ClearsSession(t *testing.T) {
	u := &domain.User{UserID: uuid.New(), Fullname: "Test User", Email: "a@b.com"}
	app, h, _ := setupAuthHandlers(t, &fakeUserFinder{user: u})

	login := postJSON(t, app, "/login", map[string]string{"email": "a@b.com", "password": "pa55word!"})
	require.Equal(t, fiber.StatusOK, login.StatusCode)
	sid := trackedSessionID(t, h, u.UserID.String())

	req := httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"=s:"+sid)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	members, err := h.Rdb.SMembers(context.Background(), "user_sessions:"+u.UserID.String()).Result()
	require.NoError(t, err)
	assert.Empty(t, members)
}
