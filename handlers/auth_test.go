package handlers_test

import (
	"net/http"
	"net/url"
	"testing"

	"arzaq-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newEnv(t)

	t.Run("success", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":     "new@example.com",
			"password":  "secret123",
			"full_name": "New User",
			"role":      "client",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var user models.User
		decode(t, w, &user)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, models.RoleClient, user.Role)
		assert.True(t, user.IsActive)
		assert.False(t, user.IsVerified)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":     "new@example.com",
			"password":  "secret123",
			"full_name": "Other User",
			"role":      "client",
		})
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "duplicate_email", errKind(t, w))
	})

	t.Run("invalid role", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":     "driver@example.com",
			"password":  "secret123",
			"full_name": "Driver",
			"role":      "driver",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", errKind(t, w))
	})

	t.Run("short password", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/auth/register", "", map[string]interface{}{
			"email":     "short@example.com",
			"password":  "abc",
			"full_name": "Short",
			"role":      "client",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	env := newEnv(t)
	env.createUser("login@example.com", models.RoleClient)

	t.Run("success issues usable token", func(t *testing.T) {
		w := env.doForm("/api/auth/login", url.Values{
			"username": {"login@example.com"},
			"password": {"password123"},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
		}
		decode(t, w, &body)
		assert.Equal(t, "bearer", body.TokenType)
		require.NotEmpty(t, body.AccessToken)

		me := env.do(http.MethodGet, "/api/auth/me", body.AccessToken, nil)
		require.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "login@example.com")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.doForm("/api/auth/login", url.Values{
			"username": {"login@example.com"},
			"password": {"wrong"},
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", errKind(t, w))
	})

	t.Run("unknown email", func(t *testing.T) {
		w := env.doForm("/api/auth/login", url.Values{
			"username": {"ghost@example.com"},
			"password": {"password123"},
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", errKind(t, w))
	})

	t.Run("inactive account", func(t *testing.T) {
		user, _ := env.createUser("inactive@example.com", models.RoleClient)
		require.NoError(t, env.h.DB.Model(user).Update("is_active", false).Error)

		w := env.doForm("/api/auth/login", url.Values{
			"username": {"inactive@example.com"},
			"password": {"password123"},
		})
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid_credentials", errKind(t, w))
	})
}

func TestMeRequiresToken(t *testing.T) {
	env := newEnv(t)
	w := env.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
