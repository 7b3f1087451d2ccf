// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/inventory"
	"github.com/your-org/ambika-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// InventoryHandler handles admin stock management endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg),
		config:           cfg,
	}
}

// AdjustStock handles POST /admin/inventory/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		respondUnauthorized(c)
		return
	}

	var req inventory.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	movement, err := h.inventoryService.AdjustStock(&req, actorID)
	if err != nil {
		respondError(c, err, "Failed to adjust stock")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
		"data":    movement,
	})
}

// GetMovements handles GET /admin/inventory/movements
func (h *InventoryHandler) GetMovements(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	var variantID uint
	if value := c.Query("variant_id"); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid variant_id parameter",
			})
			return
		}
		variantID = uint(parsed)
	}

	movements, total, err := h.inventoryService.GetMovements(variantID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve stock movements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock movements retrieved successfully",
		"data":    movements,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetLowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	threshold, _ := strconv.Atoi(c.DefaultQuery("threshold", "5"))

	variants, err := h.inventoryService.GetLowStock(threshold)
	if err != nil {
		respondError(c, err, "Failed to retrieve low stock variants")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock variants retrieved successfully",
		"data":    variants,
	})
}
