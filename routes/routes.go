package routes

import (
	"arzaq-api/handlers"
	"arzaq-api/middleware"
	"arzaq-api/models"

	"github.com/gin-gonic/gin"
)

func Setup(r *gin.Engine, h *handlers.Handler) {
	secret := h.Cfg.JWTSecret

	api := r.Group("/api")
	api.Use(middleware.RateLimit(h.Cfg.RateLimitRPS, h.Cfg.RateLimitBurst))

	// ── Auth ───────────────────────────────────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/google/login", h.GoogleLogin)
		auth.POST("/google/register", h.GoogleRegister)
		auth.GET("/me", middleware.AuthRequired(secret), h.Me)
	}

	// ── Restaurants ────────────────────────────────────────────────
	restaurants := api.Group("/restaurants")
	{
		restaurants.GET("", middleware.OptionalAuth(secret), h.ListRestaurants)
		restaurants.GET("/pending", middleware.AuthRequired(secret),
			middleware.RoleRequired(models.RoleAdmin), h.PendingRestaurants)
		restaurants.GET("/me", middleware.AuthRequired(secret),
			middleware.RoleRequired(models.RoleRestaurant), h.MyRestaurant)
		restaurants.GET("/:id", middleware.OptionalAuth(secret), h.GetRestaurant)
		restaurants.POST("", middleware.AuthRequired(secret),
			middleware.RoleRequired(models.RoleRestaurant), h.CreateRestaurant)
		restaurants.PUT("/:id", middleware.AuthRequired(secret), h.UpdateRestaurant)
		restaurants.DELETE("/:id", middleware.AuthRequired(secret), h.DeleteRestaurant)
		restaurants.POST("/:id/approve", middleware.AuthRequired(secret), h.ApproveRestaurant)
		restaurants.POST("/:id/reject", middleware.AuthRequired(secret), h.RejectRestaurant)
	}

	// ── Foods ──────────────────────────────────────────────────────
	foods := api.Group("/foods")
	{
		foods.GET("", h.ListFoods)
		foods.GET("/me", middleware.AuthRequired(secret),
			middleware.RoleRequired(models.RoleRestaurant), h.MyFoods)
		foods.GET("/:id", h.GetFood)
		foods.POST("", middleware.AuthRequired(secret), h.CreateFood)
		foods.PUT("/:id", middleware.AuthRequired(secret), h.UpdateFood)
		foods.DELETE("/:id", middleware.AuthRequired(secret), h.DeleteFood)
		foods.POST("/upload-image", middleware.AuthRequired(secret),
			middleware.RoleRequired(models.RoleRestaurant), h.UploadFoodImage)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(secret))
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/impact/stats", h.ImpactStats)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
	}

	// ── Community posts ────────────────────────────────────────────
	posts := api.Group("/posts")
	{
		posts.GET("", middleware.OptionalAuth(secret), h.ListPosts)
		posts.GET("/:id", middleware.OptionalAuth(secret), h.GetPost)
		posts.POST("", middleware.AuthRequired(secret), h.CreatePost)
		posts.DELETE("/:id", middleware.AuthRequired(secret), h.DeletePost)
		posts.POST("/:id/like", middleware.AuthRequired(secret), h.ToggleLike)
		posts.POST("/:id/comments", middleware.AuthRequired(secret), h.CreateComment)
		posts.DELETE("/:id/comments/:commentId", middleware.AuthRequired(secret), h.DeleteComment)
		posts.POST("/upload-image", middleware.AuthRequired(secret), h.UploadPostImage)
	}
}
