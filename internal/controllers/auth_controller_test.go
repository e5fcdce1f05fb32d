package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docsmedbilling/credentialing-helpdesk/internal/middleware"
	"github.com/docsmedbilling/credentialing-helpdesk/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/register",
		`{"username":"Staffer","email":"staff@example.com","password":"secret123"}`), nil)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Registered accounts always come out as staff, regardless of input.
	user, err := app.users.GetUserByEmail("staff@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, user.Role)

	t.Run("duplicate email rejected", func(t *testing.T) {
		w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/register",
			`{"username":"Other","email":"staff@example.com","password":"secret123"}`), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/register",
			`{"username":"Other","email":"other@example.com","password":"abc"}`), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginSetsSessionCookie(t *testing.T) {
	app := setupTestApp(t)
	app.createUser(t, "Staffer", "staff@example.com", "secret123", models.RoleStaff)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"secret123"}`), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "login must set the session cookie")
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	var body struct {
		User struct {
			Role string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.RoleStaff, body.User.Role)

	// The cookie authenticates subsequent requests.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	listResp := app.do(listReq, cookie)
	assert.Equal(t, http.StatusOK, listResp.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := setupTestApp(t)
	app.createUser(t, "Staffer", "staff@example.com", "secret123", models.RoleStaff)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"wrong"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"nobody@example.com","password":"secret123"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := setupTestApp(t)
	staff := app.createUser(t, "Staffer", "staff@example.com", "secret123", models.RoleStaff)
	cookie := app.loginAs(t, staff)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/logout", ""), cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// The old session no longer authenticates.
	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil)
	listResp := app.do(listReq, cookie)
	assert.Equal(t, http.StatusUnauthorized, listResp.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil),
		&http.Cookie{Name: middleware.SessionCookieName, Value: "bogus-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestForgotPasswordDoesNotDiscloseAccounts(t *testing.T) {
	app := setupTestApp(t)
	app.createUser(t, "Staffer", "staff@example.com", "secret123", models.RoleStaff)

	known := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"staff@example.com"}`), nil)
	unknown := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"nobody@example.com"}`), nil)

	// Identical status and body either way.
	assert.Equal(t, http.StatusAccepted, known.Code)
	assert.Equal(t, http.StatusAccepted, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// But only the real account got a token.
	assert.Contains(t, app.notifier.resetTokens, "staff@example.com")
	assert.NotContains(t, app.notifier.resetTokens, "nobody@example.com")
}

func TestResetPasswordFlow(t *testing.T) {
	app := setupTestApp(t)
	staff := app.createUser(t, "Staffer", "staff@example.com", "secret123", models.RoleStaff)
	oldCookie := app.loginAs(t, staff)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"staff@example.com"}`), nil)
	require.Equal(t, http.StatusAccepted, w.Code)

	token := app.notifier.resetTokens["staff@example.com"]
	require.NotEmpty(t, token)

	w = app.do(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"`+token+`","password":"brand-new-pass"}`), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Old sessions are revoked by the reset.
	listResp := app.do(httptest.NewRequest(http.MethodGet, "/api/v1/tickets", nil), oldCookie)
	assert.Equal(t, http.StatusUnauthorized, listResp.Code)

	// Old password out, new password in.
	w = app.do(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"secret123"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"staff@example.com","password":"brand-new-pass"}`), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestResetPasswordRejectsGarbageToken(t *testing.T) {
	app := setupTestApp(t)

	w := app.do(jsonRequest(http.MethodPost, "/api/v1/auth/reset-password",
		`{"token":"not-a-jwt","password":"whatever123"}`), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
