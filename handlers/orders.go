package handlers

import (
	"math"
	"net/http"
	"time"

	"arzaq-api/apperr"
	"arzaq-api/middleware"
	"arzaq-api/models"
	"arzaq-api/policy"
	"arzaq-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateOrderRequest struct {
	RestaurantID uint      `json:"restaurant_id" binding:"required"`
	PickupTime   time.Time `json:"pickup_time" binding:"required"`
	Items        []struct {
		FoodID   uint `json:"food_id" binding:"required"`
		Quantity int  `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder places an order and reserves stock (client only). Each
// reservation is a single conditional decrement so concurrent orders can
// never oversell; any shortfall rolls the whole order back.
func (h *Handler) CreateOrder(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.Decide(policy.Request{Actor: actor, Action: policy.OrderCreate}); err != nil {
		apperr.Write(c, err)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, req.RestaurantID).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "restaurant not found"))
		return
	}
	if restaurant.Status != models.RestaurantApproved {
		apperr.Write(c, apperr.New(apperr.KindRestaurantNotApproved, "restaurant is not accepting orders"))
		return
	}

	var order models.Order
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var total float64
		var items []models.OrderItem

		for _, reqItem := range req.Items {
			var food models.Food
			if err := tx.First(&food, reqItem.FoodID).Error; err != nil {
				return apperr.New(apperr.KindNotFound, "food item not found")
			}
			if food.RestaurantID != req.RestaurantID {
				return apperr.New(apperr.KindValidation, "food item '"+food.Name+"' does not belong to this restaurant")
			}
			if !food.ExpiresAt.After(time.Now()) {
				return apperr.New(apperr.KindValidation, "'"+food.Name+"' has expired")
			}

			// Reservation: decrement only if enough stock remains. The
			// quantity check and the write are one statement, so two
			// concurrent orders cannot both pass on the same stock.
			res := tx.Model(&models.Food{}).
				Where("id = ? AND quantity >= ?", food.ID, reqItem.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", reqItem.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperr.New(apperr.KindInsufficientQuantity, "not enough quantity for '"+food.Name+"'")
			}

			total += food.Price * float64(reqItem.Quantity)
			items = append(items, models.OrderItem{
				FoodID:   food.ID,
				Quantity: reqItem.Quantity,
				Price:    food.Price,
				Name:     food.Name,
			})
		}

		order = models.Order{
			CustomerID:   actor.ID,
			RestaurantID: req.RestaurantID,
			Status:       models.OrderPending,
			TotalAmount:  total,
			PickupTime:   req.PickupTime,
			Items:        items,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	h.DB.Preload("Items").Preload("Restaurant").First(&order, order.ID)
	h.Log.Info().Uint("order_id", order.ID).Uint("customer_id", actor.ID).
		Float64("total", order.TotalAmount).Msg("order placed")
	c.JSON(http.StatusCreated, order)
}

// ListOrders is role-scoped: clients see their own, restaurants their
// restaurant's, admins everything
func (h *Handler) ListOrders(c *gin.Context) {
	actor := middleware.Actor(c)

	query := h.DB.Preload("Items").Preload("Restaurant").Order("created_at desc")
	switch actor.Role {
	case models.RoleClient:
		query = query.Where("customer_id = ?", actor.ID)
	case models.RoleRestaurant:
		var restaurant models.Restaurant
		if err := h.DB.Where("owner_id = ?", actor.ID).First(&restaurant).Error; err != nil {
			c.JSON(http.StatusOK, gin.H{"count": 0, "orders": []models.Order{}})
			return
		}
		query = query.Where("restaurant_id = ?", restaurant.ID)
	case models.RoleAdmin:
		// no filter
	default:
		apperr.Write(c, apperr.New(apperr.KindForbidden, "you do not have access to this resource"))
		return
	}

	var orders []models.Order
	query.Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// GetOrder returns one order (customer, owning restaurant, or admin)
func (h *Handler) GetOrder(c *gin.Context) {
	var order models.Order
	if err := h.DB.Preload("Items").Preload("Restaurant").First(&order, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "order not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    middleware.Actor(c),
		Action:   policy.OrderView,
		OwnerIDs: h.orderOwners(&order),
	}); err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus drives the order lifecycle. The policy answers who may
// touch the order at all; the transition table answers which moves their
// role is allowed to make. Cancellation restores every reserved item.
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	actor := middleware.Actor(c)

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	var order models.Order
	if err := h.DB.First(&order, c.Param("id")).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "order not found"))
		return
	}
	if err := policy.Decide(policy.Request{
		Actor:    actor,
		Action:   policy.OrderUpdate,
		OwnerIDs: h.orderOwners(&order),
	}); err != nil {
		apperr.Write(c, err)
		return
	}
	if err := statemachine.CanTransitionOrder(order.Status, req.Status, actor.Role); err != nil {
		apperr.Write(c, err)
		return
	}

	prevStatus := order.Status
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		update := map[string]interface{}{"status": req.Status}
		if req.Status == models.OrderCompleted {
			now := time.Now()
			update["completed_at"] = &now
		}

		// Guard against a concurrent transition on the same order: the
		// update only lands if the status is still what we validated.
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prevStatus).
			Updates(update)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.KindConflict, "order was modified concurrently, please retry")
		}

		if req.Status == models.OrderCancelled {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				if err := tx.Model(&models.Food{}).
					Where("id = ?", item.FoodID).
					Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	h.Log.Info().Uint("order_id", order.ID).
		Str("from", string(prevStatus)).Str("to", string(req.Status)).
		Msg("order status updated")

	h.DB.Preload("Items").First(&order, order.ID)
	c.JSON(http.StatusOK, order)
}

// ImpactStats summarizes a client's completed orders as rescued meals and
// CO2 savings (0.18 kg per meal)
func (h *Handler) ImpactStats(c *gin.Context) {
	actor := middleware.Actor(c)
	if err := policy.Decide(policy.Request{Actor: actor, Action: policy.OrderImpact}); err != nil {
		apperr.Write(c, err)
		return
	}

	var completedOrders int64
	h.DB.Model(&models.Order{}).
		Where("customer_id = ? AND status = ?", actor.ID, models.OrderCompleted).
		Count(&completedOrders)

	var totalItems int64
	h.DB.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.customer_id = ? AND orders.status = ?", actor.ID, models.OrderCompleted).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Scan(&totalItems)

	c.JSON(http.StatusOK, gin.H{
		"completed_orders": completedOrders,
		"meals_rescued":    totalItems,
		"co2_saved":        math.Round(float64(totalItems)*0.18*10) / 10,
		"meals_goal":       30,
		"co2_goal":         10.0,
	})
}

// orderOwners returns the user IDs that count as an order's owners: its
// customer and the owner of its restaurant
func (h *Handler) orderOwners(order *models.Order) []uint {
	owners := []uint{order.CustomerID}
	var restaurant models.Restaurant
	if err := h.DB.First(&restaurant, order.RestaurantID).Error; err == nil {
		owners = append(owners, restaurant.OwnerID)
	}
	return owners
}
