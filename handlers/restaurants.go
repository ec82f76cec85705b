package handlers

import (
	"net/http"
	"strconv"
	"time"

	"arzaq-api/apperr"
	"arzaq-api/middleware"
	"arzaq-api/models"
	"arzaq-api/policy"
	"arzaq-api/statemachine"

	"github.com/gin-gonic/gin"
)

type CreateRestaurantRequest struct {
	Name        string  `json:"name" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	Phone       string  `json:"phone" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude" binding:"required"`
	Longitude   float64 `json:"longitude" binding:"required"`
}

type RejectRestaurantRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateRestaurant registers a restaurant in pending status (restaurant
// role, one per owner)
func (h *Handler) CreateRestaurant(c *gin.Context) {
	actor := middleware.Actor(c)

	var req CreateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		apperr.Write(c, apperr.New(apperr.KindValidation, "latitude must be between -90 and 90"))
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		apperr.Write(c, apperr.New(apperr.KindValidation, "longitude must be between -180 and 180"))
		return
	}

	var existing models.Restaurant
	if err := h.DB.Where("owner_id = ?", actor.ID).First(&existing).Error; err == nil {
		apperr.Write(c, apperr.New(apperr.KindConflict, "you already have a restaurant registered"))
		return
	}

	restaurant := models.Restaurant{
		OwnerID:     actor.ID,
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Status:      models.RestaurantPending,
	}
	if err := h.DB.Create(&restaurant).Error; err != nil {
		apperr.Write(c, err)
		return
	}

	h.Log.Info().Uint("restaurant_id", restaurant.ID).Uint("owner_id", actor.ID).
		Msg("restaurant created, pending approval")
	c.JSON(http.StatusCreated, restaurant)
}

// ListRestaurants is the public directory: approved only unless an admin
// asks for another status explicitly
func (h *Handler) ListRestaurants(c *gin.Context) {
	actor := middleware.Actor(c)

	status := models.RestaurantStatus(c.Query("status"))
	if status == "" {
		status = models.RestaurantApproved
	}
	if status != models.RestaurantApproved {
		if err := policy.Decide(policy.Request{Actor: actor, Action: policy.RestaurantListAll}); err != nil {
			apperr.Write(c, err)
			return
		}
	}

	query := h.DB.Where("status = ?", status)

	// Proximity filter: squared-degree comparison avoids sqrt in SQL.
	// 1 degree is roughly 111 km.
	if latStr, lngStr := c.Query("latitude"), c.Query("longitude"); latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			apperr.Write(c, apperr.New(apperr.KindValidation, "invalid coordinates"))
			return
		}
		radiusKM := 10.0
		if r := c.Query("radius_km"); r != "" {
			if parsed, err := strconv.ParseFloat(r, 64); err == nil && parsed >= 1 && parsed <= 50 {
				radiusKM = parsed
			}
		}
		maxDeg := radiusKM / 111.0
		query = query.Where(
			"(latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?) <= ?",
			lat, lat, lng, lng, maxDeg*maxDeg,
		)
	}

	var restaurants []models.Restaurant
	query.Limit(pageLimit(c)).Offset(pageOffset(c)).Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// PendingRestaurants lists applications awaiting review (admin only)
func (h *Handler) PendingRestaurants(c *gin.Context) {
	var restaurants []models.Restaurant
	h.DB.Where("status = ?", models.RestaurantPending).Find(&restaurants)
	c.JSON(http.StatusOK, gin.H{"count": len(restaurants), "restaurants": restaurants})
}

// MyRestaurant fetches the restaurant owned by the logged-in user
func (h *Handler) MyRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", middleware.Actor(c).ID).First(&restaurant).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "no restaurant found for your account"))
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// GetRestaurant returns a single restaurant. Pending and rejected profiles
// are visible only to their owner and admins.
func (h *Handler) GetRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
		return
	}
	if restaurant.Status != models.RestaurantApproved {
		if err := policy.Decide(policy.Request{
			Actor:    middleware.Actor(c),
			Action:   policy.RestaurantView,
			OwnerIDs: []uint{restaurant.OwnerID},
		}); err != nil {
			// hide existence of unapproved restaurants from outsiders
			apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
			return
		}
	}
	c.JSON(http.StatusOK, restaurant)
}

type UpdateRestaurantRequest struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	Phone       *string  `json:"phone"`
	Email       *string  `json:"email" binding:"omitempty,email"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// UpdateRestaurant updates profile fields (owner only). Status and the
// review fields are not reachable from here.
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   policy.RestaurantUpdate,
		OwnerIDs: []uint{restaurant.OwnerID},
	}); err != nil {
		apperr.Write(c, err)
		return
	}

	var req UpdateRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "latitude must be between -90 and 90"))
		return
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "longitude must be between -180 and 180"))
		return
	}

	update := map[string]interface{}{}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.Email != nil {
		update["email"] = *req.Email
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Latitude != nil {
		update["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		update["longitude"] = *req.Longitude
	}
	if len(update) == 0 {
		c.JSON(http.StatusOK, restaurant)
		return
	}
	if err := h.DB.Model(&restaurant).Updates(update).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// DeleteRestaurant removes a restaurant (owner or admin)
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   policy.RestaurantDelete,
		OwnerIDs: []uint{restaurant.OwnerID},
	}); err != nil {
		apperr.Write(c, err)
		return
	}
	if err := h.DB.Delete(&restaurant).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ApproveRestaurant moves a pending application to approved (admin only)
func (h *Handler) ApproveRestaurant(c *gin.Context) {
	h.reviewRestaurant(c, models.RestaurantApproved, "")
}

// RejectRestaurant moves a pending application to rejected with a reason
// (admin only)
func (h *Handler) RejectRestaurant(c *gin.Context) {
	var req RejectRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}
	h.reviewRestaurant(c, models.RestaurantRejected, req.Reason)
}

func (h *Handler) reviewRestaurant(c *gin.Context, to models.RestaurantStatus, reason string) {
	action := policy.RestaurantApprove
	if to == models.RestaurantRejected {
		action = policy.RestaurantReject
	}
	if err := policy.Decide(policy.Request{Actor: middleware.Actor(c), Action: action}); err != nil {
		apperr.Write(c, err)
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
		return
	}
	if err := statemachine.CanTransitionRestaurant(restaurant.Status, to); err != nil {
		apperr.Write(c, err)
		return
	}

	update := map[string]interface{}{"status": to}
	if to == models.RestaurantApproved {
		now := time.Now()
		update["approved_at"] = &now
	} else {
		update["rejection_reason"] = reason
	}
	if err := h.DB.Model(&restaurant).Updates(update).Error; err != nil {
		apperr.Write(c, err)
		return
	}

	h.Log.Info().Uint("restaurant_id", restaurant.ID).Str("status", string(to)).
		Msg("restaurant reviewed")
	c.JSON(http.StatusOK, restaurant)
}

// pageLimit and pageOffset apply the shared pagination contract
func pageLimit(c *gin.Context) int {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return limit
}

func pageOffset(c *gin.Context) int {
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}
