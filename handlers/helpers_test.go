package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"arzaq-api/config"
	"arzaq-api/handlers"
	"arzaq-api/middleware"
	"arzaq-api/models"
	"arzaq-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	h      *handlers.Handler
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:    "test",
		JWTSecret:      []byte("handlers-test-secret"),
		TokenExpiry:    time.Hour,
		RateLimitRPS:   10000,
		RateLimitBurst: 10000,
	}

	h := handlers.New(db, cfg, zerolog.Nop())
	r := gin.New()
	routes.Setup(r, h)
	return &testEnv{t: t, router: r, h: h}
}

func (e *testEnv) createUser(email string, role models.UserRole) (*models.User, string) {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(e.t, err)
	hashStr := string(hash)
	user := &models.User{
		Email:          email,
		FullName:       "Test " + email,
		HashedPassword: &hashStr,
		Role:           role,
		IsActive:       true,
	}
	require.NoError(e.t, e.h.DB.Create(user).Error)

	token, err := middleware.GenerateToken(user, e.h.Cfg.JWTSecret, e.h.Cfg.TokenExpiry)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) createRestaurant(ownerID uint, status models.RestaurantStatus) *models.Restaurant {
	e.t.Helper()
	restaurant := &models.Restaurant{
		OwnerID:   ownerID,
		Name:      "Test Kitchen",
		Address:   "1 Abay Ave",
		Phone:     "+77010000000",
		Email:     "kitchen@example.com",
		Latitude:  51.1,
		Longitude: 71.4,
		Status:    status,
	}
	if status == models.RestaurantApproved {
		now := time.Now()
		restaurant.ApprovedAt = &now
	}
	require.NoError(e.t, e.h.DB.Create(restaurant).Error)
	return restaurant
}

func (e *testEnv) createFood(restaurantID uint, quantity int) *models.Food {
	e.t.Helper()
	food := &models.Food{
		RestaurantID: restaurantID,
		Name:         "Surprise Box",
		Price:        5,
		OldPrice:     12,
		Discount:     58,
		Quantity:     quantity,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	require.NoError(e.t, e.h.DB.Create(food).Error)
	return food
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doForm(path string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// errKind extracts the stable error kind from a structured error response
func errKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Kind string `json:"kind"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Kind
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func (e *testEnv) foodQuantity(foodID uint) int {
	e.t.Helper()
	var food models.Food
	require.NoError(e.t, e.h.DB.First(&food, foodID).Error)
	return food.Quantity
}
