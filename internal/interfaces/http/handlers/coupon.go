// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/cart"
	"github.com/your-org/ambika-backend/internal/domain/coupon"
	"github.com/your-org/ambika-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	cartService   *cart.Service
	config        *config.Config
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *CouponHandler {
	return &CouponHandler{
		couponService: coupon.NewService(db, cfg),
		cartService:   cart.NewService(db, redisClient, cfg),
		config:        cfg,
	}
}

// GetValidCoupons handles GET /coupons/valid, listing coupons the
// authenticated user could apply to their current cart
func (h *CouponHandler) GetValidCoupons(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	coupons, err := h.cartService.ListValidCoupons(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve coupons")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Valid coupons retrieved successfully",
		"data":    coupons,
	})
}

// AdminCreateCoupon handles POST /admin/coupons
func (h *CouponHandler) AdminCreateCoupon(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	created, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		respondError(c, err, "Failed to create coupon")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Coupon created successfully",
		"data":    created,
	})
}

// AdminGetCoupons handles GET /admin/coupons
func (h *CouponHandler) AdminGetCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	coupons, total, err := h.couponService.GetCoupons(page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve coupons")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupons retrieved successfully",
		"data":    coupons,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// AdminGetCoupon handles GET /admin/coupons/:id
func (h *CouponHandler) AdminGetCoupon(c *gin.Context) {
	couponID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	found, err := h.couponService.GetCoupon(couponID)
	if err != nil {
		respondError(c, err, "Failed to retrieve coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon retrieved successfully",
		"data":    found,
	})
}

// AdminDeactivateCoupon handles DELETE /admin/coupons/:id
func (h *CouponHandler) AdminDeactivateCoupon(c *gin.Context) {
	couponID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.couponService.DeactivateCoupon(couponID); err != nil {
		respondError(c, err, "Failed to deactivate coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon deactivated successfully",
	})
}
