package handlers

import (
	"math"
	"net/http"
	"time"

	"arzaq-api/apperr"
	"arzaq-api/middleware"
	"arzaq-api/models"
	"arzaq-api/policy"
	"arzaq-api/services"

	"github.com/gin-gonic/gin"
)

type CreateFoodRequest struct {
	RestaurantID uint      `json:"restaurant_id" binding:"required"`
	Name         string    `json:"name" binding:"required"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	Price        float64   `json:"price" binding:"required"`
	OldPrice     float64   `json:"old_price" binding:"required"`
	Discount     int       `json:"discount"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
	ExpiresAt    time.Time `json:"expires_at" binding:"required"`
}

// FoodWithRestaurant decorates a public listing entry with pickup info
type FoodWithRestaurant struct {
	models.Food
	RestaurantName    string `json:"restaurant_name"`
	RestaurantAddress string `json:"restaurant_address"`
}

// CreateFood adds a surplus listing for the caller's approved restaurant
func (h *Handler) CreateFood(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.Decide(policy.Request{Actor: actor, Action: policy.FoodCreate}); err != nil {
		apperr.Write(c, err)
		return
	}

	var req CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.Where("id = ? AND owner_id = ?", req.RestaurantID, actor.ID).
		First(&restaurant).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindForbidden, "you can only create food items for your own restaurant"))
		return
	}
	if restaurant.Status != models.RestaurantApproved {
		apperr.Write(c, apperr.New(apperr.KindRestaurantNotApproved, "restaurant must be approved to create food items"))
		return
	}

	if !req.ExpiresAt.After(time.Now()) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "expiration date must be in the future"))
		return
	}
	if req.Price <= 0 || req.OldPrice <= 0 {
		apperr.Write(c, apperr.New(apperr.KindValidation, "prices must be greater than zero"))
		return
	}
	if req.Price >= req.OldPrice {
		apperr.Write(c, apperr.New(apperr.KindValidation, "discounted price must be less than original price"))
		return
	}

	discount := req.Discount
	if discount == 0 {
		discount = int(math.Round((1 - req.Price/req.OldPrice) * 100))
	}

	food := models.Food{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.Image,
		Price:        req.Price,
		OldPrice:     req.OldPrice,
		Discount:     discount,
		Quantity:     req.Quantity,
		ExpiresAt:    req.ExpiresAt,
	}
	if err := h.DB.Create(&food).Error; err != nil {
		apperr.Write(c, err)
		return
	}

	h.Log.Info().Uint("food_id", food.ID).Uint("restaurant_id", restaurant.ID).Msg("food item created")
	c.JSON(http.StatusCreated, food)
}

// ListFoods is the public catalog: in-stock, unexpired items from approved
// restaurants. Exhausted or expired items stay stored but are hidden.
func (h *Handler) ListFoods(c *gin.Context) {
	query := h.DB.Model(&models.Food{}).
		Select("foods.*, restaurants.name AS restaurant_name, restaurants.address AS restaurant_address").
		Joins("JOIN restaurants ON restaurants.id = foods.restaurant_id").
		Where("foods.quantity > 0").
		Where("foods.expires_at > ?", time.Now()).
		Where("restaurants.status = ?", models.RestaurantApproved)

	if restaurantID := c.Query("restaurant_id"); restaurantID != "" {
		query = query.Where("foods.restaurant_id = ?", restaurantID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("foods.name LIKE ? OR foods.description LIKE ?", pattern, pattern)
	}

	var foods []FoodWithRestaurant
	query.Limit(pageLimit(c)).Offset(pageOffset(c)).Scan(&foods)
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "foods": foods})
}

// MyFoods returns every listing of the caller's restaurant, including
// exhausted and expired ones
func (h *Handler) MyFoods(c *gin.Context) {
	var restaurant models.Restaurant
	if err := h.DB.Where("owner_id = ?", middleware.Actor(c).ID).First(&restaurant).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "no restaurant found for your account"))
		return
	}

	var foods []models.Food
	h.DB.Where("restaurant_id = ?", restaurant.ID).Find(&foods)
	c.JSON(http.StatusOK, gin.H{"count": len(foods), "foods": foods})
}

// GetFood returns a food item by ID
func (h *Handler) GetFood(c *gin.Context) {
	var food models.Food
	if err := h.DB.First(&food, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "food item not found"))
		return
	}
	c.JSON(http.StatusOK, food)
}

type UpdateFoodRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Image       *string    `json:"image"`
	Price       *float64   `json:"price"`
	OldPrice    *float64   `json:"old_price"`
	Discount    *int       `json:"discount"`
	Quantity    *int       `json:"quantity"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// UpdateFood updates a listing (owning restaurant only). The merged result
// must satisfy the same constraints as creation.
func (h *Handler) UpdateFood(c *gin.Context) {
	food, err := h.ownedFood(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req UpdateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	update := map[string]interface{}{}
	if req.Name != nil {
		food.Name = *req.Name
		update["name"] = *req.Name
	}
	if req.Description != nil {
		food.Description = *req.Description
		update["description"] = *req.Description
	}
	if req.Image != nil {
		food.Image = *req.Image
		update["image"] = *req.Image
	}
	if req.Price != nil {
		food.Price = *req.Price
		update["price"] = *req.Price
	}
	if req.OldPrice != nil {
		food.OldPrice = *req.OldPrice
		update["old_price"] = *req.OldPrice
	}
	if req.Quantity != nil {
		food.Quantity = *req.Quantity
		update["quantity"] = *req.Quantity
	}
	if req.ExpiresAt != nil {
		food.ExpiresAt = *req.ExpiresAt
		update["expires_at"] = *req.ExpiresAt
	}

	if food.Price <= 0 || food.OldPrice <= 0 {
		apperr.Write(c, apperr.New(apperr.KindValidation, "prices must be greater than zero"))
		return
	}
	if food.Price >= food.OldPrice {
		apperr.Write(c, apperr.New(apperr.KindValidation, "discounted price must be less than original price"))
		return
	}
	if food.Quantity < 0 {
		apperr.Write(c, apperr.New(apperr.KindValidation, "quantity must not be negative"))
		return
	}
	if req.ExpiresAt != nil && !food.ExpiresAt.After(time.Now()) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "expiration date must be in the future"))
		return
	}

	if req.Discount != nil {
		update["discount"] = *req.Discount
	} else if req.Price != nil || req.OldPrice != nil {
		update["discount"] = int(math.Round((1 - food.Price/food.OldPrice) * 100))
	}
	if len(update) == 0 {
		c.JSON(http.StatusOK, food)
		return
	}

	if err := h.DB.Model(food).Updates(update).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// DeleteFood removes a listing and best-effort deletes its stored image
func (h *Handler) DeleteFood(c *gin.Context) {
	food, err := h.ownedFood(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	if food.Image != "" {
		if err := h.Images.DeleteImage(c.Request.Context(), services.PublicIDFromURL(food.Image)); err != nil {
			h.Log.Warn().Err(err).Uint("food_id", food.ID).Msg("failed to delete food image")
		}
	}
	if err := h.DB.Delete(food).Error; err != nil {
		apperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadFoodImage stores an image blob and returns its URL
func (h *Handler) UploadFoodImage(c *gin.Context) {
	h.uploadImage(c, "arzaq/foods")
}

const maxImageSize = 10 << 20 // 10MB

func (h *Handler) uploadImage(c *gin.Context, folder string) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, "file is required"))
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if len(contentType) < 6 || contentType[:6] != "image/" {
		apperr.Write(c, apperr.New(apperr.KindValidation, "file must be an image"))
		return
	}
	if fileHeader.Size > maxImageSize {
		apperr.Write(c, apperr.New(apperr.KindValidation, "file size must not exceed 10MB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apperr.Write(c, err)
		return
	}
	defer file.Close()

	result, err := h.Images.UploadImage(c.Request.Context(), file, folder)
	if err != nil {
		h.Log.Error().Err(err).Msg("image upload failed")
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"url":       result.URL,
		"public_id": result.PublicID,
	})
}

// ownedFood loads a food item and authorizes the caller as its restaurant's
// owner. Listings of a restaurant that is no longer approved cannot be
// managed.
func (h *Handler) ownedFood(c *gin.Context) (*models.Food, error) {
	var food models.Food
	if err := h.DB.First(&food, c.Param("id")).Error; err != nil {
		return nil, apperr.New(apperr.KindNotFound, "food item not found")
	}
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, food.RestaurantID).Error; err != nil {
		return nil, apperr.New(apperr.KindNotFound, "restaurant not found")
	}
	action := policy.FoodUpdate
	if c.Request.Method == http.MethodDelete {
		action = policy.FoodDelete
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   action,
		OwnerIDs: []uint{restaurant.OwnerID},
	}); err != nil {
		return nil, err
	}
	if restaurant.Status != models.RestaurantApproved {
		return nil, apperr.New(apperr.KindRestaurantNotApproved, "restaurant must be approved to manage food items")
	}
	return &food, nil
}
