// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/interfaces/http/handlers"
	"github.com/your-org/ambika-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes mounts all API routes on the given router group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)
	orderHandler := handlers.NewOrderHandler(db, redisClient, cfg, log)
	couponHandler := handlers.NewCouponHandler(db, redisClient, cfg)
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)
	wishlistHandler := handlers.NewWishlistHandler(db, cfg)

	// Public auth endpoints
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/change-password", authHandler.ChangePassword)
		}
	}

	// Public catalog endpoints
	products := rg.Group("/products")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/categories", productHandler.GetCategories)
		products.GET("/categories/:id", productHandler.GetCategory)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
	}

	// Profile and addresses
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.GET("/addresses", userHandler.GetAddresses)
		users.POST("/addresses", userHandler.CreateAddress)
		users.PUT("/addresses/:id", userHandler.UpdateAddress)
		users.DELETE("/addresses/:id", userHandler.DeleteAddress)
	}

	// Cart
	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddToCart)
		cart.PUT("/items/:id", cartHandler.UpdateCartItem)
		cart.DELETE("/items/:id", cartHandler.RemoveCartItem)
		cart.POST("/items/:id/save", cartHandler.SaveForLater)
		cart.POST("/items/:id/move", cartHandler.MoveToCart)
		cart.POST("/coupon", cartHandler.ApplyCoupon)
		cart.DELETE("/coupon", cartHandler.RemoveCoupon)
	}

	// Coupons visible to shoppers
	coupons := rg.Group("/coupons")
	coupons.Use(middleware.AuthMiddleware(cfg))
	{
		coupons.GET("/valid", couponHandler.GetValidCoupons)
	}

	// Orders
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/track/:number", orderHandler.TrackOrder)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.PUT("/:id/return", orderHandler.ReturnOrder)
		orders.POST("/:id/payment", orderHandler.ProcessPayment)
		orders.GET("/:id/invoice", orderHandler.DownloadInvoice)
	}

	// Wishlist
	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.AuthMiddleware(cfg))
	{
		wishlist.GET("", wishlistHandler.GetWishlist)
		wishlist.DELETE("", wishlistHandler.ClearWishlist)
		wishlist.POST("/items", wishlistHandler.AddToWishlist)
		wishlist.DELETE("/items/:id", wishlistHandler.RemoveFromWishlist)
	}

	// Admin endpoints
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/orders", orderHandler.AdminGetOrders)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)

		admin.POST("/coupons", couponHandler.AdminCreateCoupon)
		admin.GET("/coupons", couponHandler.AdminGetCoupons)
		admin.GET("/coupons/:id", couponHandler.AdminGetCoupon)
		admin.DELETE("/coupons/:id", couponHandler.AdminDeactivateCoupon)

		admin.POST("/inventory/adjust", inventoryHandler.AdjustStock)
		admin.GET("/inventory/movements", inventoryHandler.GetMovements)
		admin.GET("/inventory/low-stock", inventoryHandler.GetLowStock)
	}
}
