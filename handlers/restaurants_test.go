package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"arzaq-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restaurantPayload() map[string]interface{} {
	return map[string]interface{}{
		"name":      "Corner Bakery",
		"address":   "12 Baker St",
		"phone":     "+77010000001",
		"email":     "bakery@example.com",
		"latitude":  51.13,
		"longitude": 71.43,
	}
}

func TestCreateRestaurant(t *testing.T) {
	env := newEnv(t)
	_, ownerToken := env.createUser("owner@example.com", models.RoleRestaurant)
	_, clientToken := env.createUser("client@example.com", models.RoleClient)

	t.Run("starts pending", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/restaurants", ownerToken, restaurantPayload())
		require.Equal(t, http.StatusCreated, w.Code)
		var restaurant models.Restaurant
		decode(t, w, &restaurant)
		assert.Equal(t, models.RestaurantPending, restaurant.Status)
	})

	t.Run("one per owner", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/restaurants", ownerToken, restaurantPayload())
		require.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", errKind(t, w))
	})

	t.Run("client role denied", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/restaurants", clientToken, restaurantPayload())
		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden_role", errKind(t, w))
	})

	t.Run("coordinate bounds", func(t *testing.T) {
		_, token := env.createUser("owner2@example.com", models.RoleRestaurant)
		payload := restaurantPayload()
		payload["latitude"] = 120.0
		w := env.do(http.MethodPost, "/api/restaurants", token, payload)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", errKind(t, w))
	})
}

func TestApprovalWorkflow(t *testing.T) {
	env := newEnv(t)
	owner, ownerToken := env.createUser("owner@example.com", models.RoleRestaurant)
	restaurant := env.createRestaurant(owner.ID, models.RestaurantPending)
	_, adminToken := env.createUser("admin@example.com", models.RoleAdmin)
	_, clientToken := env.createUser("client@example.com", models.RoleClient)

	approvePath := fmt.Sprintf("/api/restaurants/%d/approve", restaurant.ID)

	t.Run("non-admin cannot approve", func(t *testing.T) {
		for _, token := range []string{ownerToken, clientToken} {
			w := env.do(http.MethodPost, approvePath, token, nil)
			require.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "forbidden", errKind(t, w))
		}
	})

	t.Run("admin approves", func(t *testing.T) {
		w := env.do(http.MethodPost, approvePath, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var approved models.Restaurant
		decode(t, w, &approved)
		assert.Equal(t, models.RestaurantApproved, approved.Status)
		assert.NotNil(t, approved.ApprovedAt)
	})

	t.Run("approval is terminal", func(t *testing.T) {
		w := env.do(http.MethodPost, approvePath, adminToken, nil)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "invalid_transition", errKind(t, w))

		w = env.do(http.MethodPost, fmt.Sprintf("/api/restaurants/%d/reject", restaurant.ID),
			adminToken, map[string]interface{}{"reason": "late"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejection records reason", func(t *testing.T) {
		other, _ := env.createUser("other@example.com", models.RoleRestaurant)
		pending := env.createRestaurant(other.ID, models.RestaurantPending)

		w := env.do(http.MethodPost, fmt.Sprintf("/api/restaurants/%d/reject", pending.ID),
			adminToken, map[string]interface{}{"reason": "incomplete documents"})
		require.Equal(t, http.StatusOK, w.Code)
		var rejected models.Restaurant
		decode(t, w, &rejected)
		assert.Equal(t, models.RestaurantRejected, rejected.Status)
		assert.Equal(t, "incomplete documents", rejected.RejectionReason)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		other, _ := env.createUser("reasonless@example.com", models.RoleRestaurant)
		pending := env.createRestaurant(other.ID, models.RestaurantPending)
		w := env.do(http.MethodPost, fmt.Sprintf("/api/restaurants/%d/reject", pending.ID),
			adminToken, map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRestaurantVisibility(t *testing.T) {
	env := newEnv(t)
	owner, ownerToken := env.createUser("owner@example.com", models.RoleRestaurant)
	pending := env.createRestaurant(owner.ID, models.RestaurantPending)

	approvedOwner, _ := env.createUser("approved@example.com", models.RoleRestaurant)
	approved := env.createRestaurant(approvedOwner.ID, models.RestaurantApproved)

	_, adminToken := env.createUser("admin@example.com", models.RoleAdmin)
	_, clientToken := env.createUser("client@example.com", models.RoleClient)

	t.Run("public list shows approved only", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/restaurants", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Count       int `json:"count"`
			Restaurants []struct {
				ID uint `json:"id"`
			} `json:"restaurants"`
		}
		decode(t, w, &body)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, approved.ID, body.Restaurants[0].ID)
	})

	t.Run("status filter is admin only", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/restaurants?status=pending", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(http.MethodGet, "/api/restaurants?status=pending", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("pending profile hidden from outsiders", func(t *testing.T) {
		path := fmt.Sprintf("/api/restaurants/%d", pending.ID)
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, "", nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, path, clientToken, nil).Code)
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, ownerToken, nil).Code)
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, path, adminToken, nil).Code)
	})

	t.Run("pending queue is admin only", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden,
			env.do(http.MethodGet, "/api/restaurants/pending", clientToken, nil).Code)
		w := env.do(http.MethodGet, "/api/restaurants/pending", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("owner fetches own via me", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/restaurants/me", ownerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"pending"`)
	})
}

func TestUpdateRestaurantOwnership(t *testing.T) {
	env := newEnv(t)
	owner, ownerToken := env.createUser("owner@example.com", models.RoleRestaurant)
	restaurant := env.createRestaurant(owner.ID, models.RestaurantApproved)
	_, strangerToken := env.createUser("stranger@example.com", models.RoleRestaurant)

	path := fmt.Sprintf("/api/restaurants/%d", restaurant.ID)

	w := env.do(http.MethodPut, path, strangerToken, map[string]interface{}{"name": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPut, path, ownerToken, map[string]interface{}{
		"name":   "Renamed Kitchen",
		"status": "approved", // not an updatable field, must be ignored
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Restaurant
	require.NoError(t, env.h.DB.First(&stored, restaurant.ID).Error)
	assert.Equal(t, "Renamed Kitchen", stored.Name)

	t.Run("updates are validated", func(t *testing.T) {
		w := env.do(http.MethodPut, path, ownerToken, map[string]interface{}{"latitude": 120.0})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", errKind(t, w))

		w = env.do(http.MethodPut, path, ownerToken, map[string]interface{}{"name": 42})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", errKind(t, w))

		w = env.do(http.MethodPut, path, ownerToken, map[string]interface{}{"email": "not-an-email"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", errKind(t, w))
	})
}

func TestDeleteRestaurant(t *testing.T) {
	env := newEnv(t)
	owner, ownerToken := env.createUser("owner@example.com", models.RoleRestaurant)
	restaurant := env.createRestaurant(owner.ID, models.RestaurantApproved)
	_, clientToken := env.createUser("client@example.com", models.RoleClient)

	path := fmt.Sprintf("/api/restaurants/%d", restaurant.ID)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodDelete, path, clientToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, path, ownerToken, nil).Code)

	t.Run("admin deletes any", func(t *testing.T) {
		other, _ := env.createUser("other@example.com", models.RoleRestaurant)
		target := env.createRestaurant(other.ID, models.RestaurantApproved)
		_, adminToken := env.createUser("admin@example.com", models.RoleAdmin)
		assert.Equal(t, http.StatusNoContent,
			env.do(http.MethodDelete, fmt.Sprintf("/api/restaurants/%d", target.ID), adminToken, nil).Code)
	})
}
