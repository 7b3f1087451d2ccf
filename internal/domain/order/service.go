// internal/domain/order/service.go
package order

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/ambika-backend/internal/config"
	"github.com/your-org/ambika-backend/internal/domain/cart"
	"github.com/your-org/ambika-backend/internal/domain/coupon"
	"github.com/your-org/ambika-backend/internal/domain/inventory"
	"github.com/your-org/ambika-backend/internal/domain/pricing"
	"github.com/your-org/ambika-backend/internal/domain/product"
	"github.com/your-org/ambika-backend/internal/domain/user"
	"github.com/your-org/ambika-backend/internal/pkg/apperrors"
	"github.com/your-org/ambika-backend/internal/pkg/invoice"
	"github.com/your-org/ambika-backend/internal/pkg/lock"
	"github.com/your-org/ambika-backend/internal/pkg/notification"
	"gorm.io/gorm"
)

// Service handles order business logic
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	logger      *logrus.Logger
	locker      *lock.Locker
	ledger      inventory.Ledger
	inventory   *inventory.Service
	coupons     *coupon.Service
	notifier    *notification.Notifier
	invoices    *invoice.Service
}

// NewService creates a new order service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *Service {
	inventorySvc := inventory.NewService(db, cfg)
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		logger:      logger,
		locker:      lock.NewLocker(redisClient),
		ledger:      inventorySvc,
		inventory:   inventorySvc,
		coupons:     coupon.NewService(db, cfg),
		notifier:    notification.NewNotifier(cfg, logger),
		invoices:    invoice.NewService(cfg),
	}
}

// CreateOrderRequest represents checkout input
type CreateOrderRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	PaymentMethod     string `json:"payment_method" binding:"required"`
	Notes             string `json:"notes"`
}

// UpdateStatusRequest represents an operator status change
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// ProcessPaymentRequest represents a payment gateway callback
type ProcessPaymentRequest struct {
	GatewayReference string `json:"gateway_reference"`
	Success          bool   `json:"success"`
}

// OrderListRequest represents order listing parameters
type OrderListRequest struct {
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
	Status    string `form:"status"`
	UserID    uint   `form:"user_id"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

// CreateOrder turns the user's cart into an order. Inside one
// transaction it validates the applied coupon, validates and commits
// stock, creates the order row with frozen items and pricing, records
// coupon usage and clears the cart. Any failure rolls the whole
// checkout back, so no stock, coupon counter or order state is ever
// half applied.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*Order, error) {
	// Holding the cart lock for the whole checkout keeps concurrent
	// cart mutations from racing the snapshot.
	handle, err := s.locker.Acquire(ctx, fmt.Sprintf("cart:%d", userID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	userCart, err := s.loadCart(userID)
	if err != nil {
		return nil, err
	}
	activeItems := userCart.ActiveItems()
	if len(activeItems) == 0 {
		return nil, apperrors.NewValidation("cannot place an order with an empty cart")
	}

	var u user.User
	if err := s.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	var addr user.Address
	err = s.db.Where("id = ? AND user_id = ?", req.ShippingAddressID, userID).First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("address")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}

	items, couponLines, err := s.freezeItems(activeItems)
	if err != nil {
		return nil, err
	}

	// Re-validate the coupon against the final cart before any state
	// changes; the discount is recomputed, never trusted from the cart.
	var appliedCoupon *coupon.Coupon
	discount := int64(0)
	if userCart.Discount.CouponID != nil {
		appliedCoupon, err = s.loadCoupon(*userCart.Discount.CouponID)
		if err != nil {
			return nil, err
		}
		if err := s.coupons.ValidateForCart(appliedCoupon, &u, userCart.Subtotal, couponLines); err != nil {
			return nil, err
		}
		discount = coupon.CalculateDiscount(appliedCoupon, userCart.Subtotal, couponLines)
	}

	now := time.Now().UTC()
	newOrder := &Order{
		OrderNumber:    GenerateOrderNumber(now),
		UserID:         userID,
		Status:         StatusPlaced,
		Subtotal:       userCart.Subtotal,
		DiscountAmount: discount,
		TaxAmount:      userCart.Tax.Amount,
		TaxRate:        userCart.Tax.Rate,
		ShippingAmount: userCart.Shipping.Amount,
		ShippingMethod: userCart.Shipping.Method,
		TotalAmount:    pricing.ClampZero(userCart.Subtotal + userCart.Tax.Amount + userCart.Shipping.Amount - discount),
		Currency:       userCart.Currency,
		ShippingAddress: Address{
			Name:         addr.Name,
			Phone:        addr.Phone,
			AddressLine1: addr.Street,
			City:         addr.City,
			State:        addr.State,
			Pincode:      addr.Pincode,
			Landmark:     addr.Landmark,
		},
		Payment: Payment{
			Method: req.PaymentMethod,
			Status: PaymentStatusPending,
		},
		Notes:    req.Notes,
		PlacedAt: now,
		Items:    items,
	}
	if appliedCoupon != nil {
		newOrder.CouponID = &appliedCoupon.ID
		newOrder.CouponCode = appliedCoupon.Code
	}
	newOrder.AddStatusHistory(StatusPlaced, "Order placed", userID)

	stockLines := newOrder.InventoryLines()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.inventory.Validate(stockLines); err != nil {
			return err
		}

		if err := tx.Create(newOrder).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// The guarded decrement is the real stock authority; the
		// Validate above only fails fast.
		if err := s.ledger.Commit(tx, stockLines, newOrder.ID, userID); err != nil {
			return err
		}

		if appliedCoupon != nil {
			if err := s.coupons.RecordUsage(tx, appliedCoupon.ID, userID, newOrder.ID, discount); err != nil {
				return err
			}
		}

		result := tx.Model(&user.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + 1"),
			"total_spent":  gorm.Expr("total_spent + ?", newOrder.TotalAmount),
		})
		if result.Error != nil {
			return fmt.Errorf("failed to update user stats: %w", result.Error)
		}

		if err := s.clearCart(tx, userCart); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.OrderPlaced(u.Email, u.Name, newOrder.OrderNumber, newOrder.TotalAmount)

	return newOrder, nil
}

// CancelOrder cancels an order and returns its stock to the shelves.
// Legal only while the order has not been packed.
func (s *Service) CancelOrder(ctx context.Context, orderID uint, reason string, actorID uint) (*Order, error) {
	handle, err := s.locker.Acquire(ctx, fmt.Sprintf("order:%d", orderID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := CanCancel(o.Status); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Release(tx, o.InventoryLines(), o.ID, actorID); err != nil {
			return err
		}

		o.CancellationReason = reason
		note := "Order cancelled"
		if reason != "" {
			note = fmt.Sprintf("Order cancelled: %s", reason)
		}
		o.SetStatus(StatusCancelled, note, actorID)

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error; err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(o)
	return o, nil
}

// ReturnOrder marks a delivered order as returned. Stock is not
// auto-released; return intake is a separate warehouse step.
func (s *Service) ReturnOrder(ctx context.Context, orderID uint, reason string, actorID uint) (*Order, error) {
	handle, err := s.locker.Acquire(ctx, fmt.Sprintf("order:%d", orderID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := CanReturn(o, time.Now().UTC(), s.config.ReturnWindow()); err != nil {
		return nil, err
	}

	o.ReturnReason = reason
	note := "Order returned"
	if reason != "" {
		note = fmt.Sprintf("Order returned: %s", reason)
	}
	o.SetStatus(StatusReturned, note, actorID)

	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error; err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.notifyStatus(o)
	return o, nil
}

// UpdateStatus is the operator path for moving an order through its
// lifecycle. Every move is checked against the transition table;
// cancel and return route through their dedicated flows so their side
// effects apply.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, req *UpdateStatusRequest, actorID uint) (*Order, error) {
	if !ValidStatus(req.Status) {
		return nil, apperrors.NewValidation(fmt.Sprintf("unknown order status: %s", req.Status))
	}
	switch req.Status {
	case StatusCancelled:
		return s.CancelOrder(ctx, orderID, req.Note, actorID)
	case StatusReturned:
		return s.ReturnOrder(ctx, orderID, req.Note, actorID)
	}

	handle, err := s.locker.Acquire(ctx, fmt.Sprintf("order:%d", orderID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(o.Status, req.Status); err != nil {
		return nil, err
	}

	o.SetStatus(req.Status, req.Note, actorID)
	if req.Status == StatusDelivered {
		o.InvoiceNumber = invoice.Number(o.OrderNumber)
	}

	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error; err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	s.notifyStatus(o)
	return o, nil
}

// ProcessPayment records the gateway outcome for an order's payment
// and confirms the order on success.
func (s *Service) ProcessPayment(ctx context.Context, orderID uint, req *ProcessPaymentRequest) (*Order, error) {
	handle, err := s.locker.Acquire(ctx, fmt.Sprintf("order:%d", orderID))
	if err != nil {
		return nil, err
	}
	defer s.locker.Release(ctx, handle)

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if o.Payment.Status == PaymentStatusCompleted {
		return nil, apperrors.NewValidation("payment already completed")
	}

	if !req.Success {
		o.Payment.Status = PaymentStatusFailed
		o.Payment.GatewayReference = req.GatewayReference
		if err := s.db.Save(o).Error; err != nil {
			return nil, fmt.Errorf("failed to save order: %w", err)
		}
		return o, nil
	}

	now := time.Now().UTC()
	o.Payment.Status = PaymentStatusCompleted
	o.Payment.GatewayReference = req.GatewayReference
	o.Payment.PaidAt = &now
	if o.Status == StatusPlaced {
		if err := CanTransition(o.Status, StatusConfirmed); err == nil {
			o.SetStatus(StatusConfirmed, "Payment received", 0)
		}
	}

	if err := s.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(o).Error; err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	var u user.User
	if err := s.db.First(&u, o.UserID).Error; err == nil {
		s.notifier.PaymentReceived(u.Email, u.Name, o.OrderNumber, o.TotalAmount)
	}
	return o, nil
}

// GetOrder retrieves an order with its items and full history.
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.timestamp ASC")
		}).
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrderByNumber retrieves an order by its public order number.
func (s *Service) GetOrderByNumber(orderNumber string) (*Order, error) {
	var o Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_status_history.timestamp ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("order")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrders lists orders with filters, for the admin surface.
func (s *Service) GetOrders(req *OrderListRequest) ([]Order, int64, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Order{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID != 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.Preload("Items").
		Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset((req.Page - 1) * req.Limit).
		Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// GetUserOrders lists one user's orders, newest first.
func (s *Service) GetUserOrders(userID uint, page, limit int) ([]Order, int64, error) {
	return s.GetOrders(&OrderListRequest{
		Page:   page,
		Limit:  limit,
		UserID: userID,
	})
}

// GenerateInvoice renders the PDF invoice for a delivered order.
func (s *Service) GenerateInvoice(orderID uint) (*bytes.Buffer, string, error) {
	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, "", err
	}
	if o.Status != StatusDelivered && o.Status != StatusReturned && o.Status != StatusRefunded {
		return nil, "", apperrors.NewValidation("invoice is available once the order is delivered")
	}

	inv := invoice.Invoice{
		OrderNumber: o.OrderNumber,
		Date:        time.Now(),
		ShipTo: invoice.Address{
			Name:         o.ShippingAddress.Name,
			Phone:        o.ShippingAddress.Phone,
			AddressLine1: o.ShippingAddress.AddressLine1,
			AddressLine2: o.ShippingAddress.AddressLine2,
			City:         o.ShippingAddress.City,
			State:        o.ShippingAddress.State,
			Pincode:      o.ShippingAddress.Pincode,
		},
		Lines:    make([]invoice.Line, 0, len(o.Items)),
		Subtotal: o.Subtotal,
		Discount: o.DiscountAmount,
		Tax:      o.TaxAmount,
		Shipping: o.ShippingAmount,
		Total:    o.TotalAmount,
	}
	for _, item := range o.Items {
		inv.Lines = append(inv.Lines, invoice.Line{
			Name:     item.Name,
			SKU:      item.SKU,
			Size:     item.Size,
			Color:    item.Color,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    item.TotalPrice,
		})
	}

	buf, err := s.invoices.Generate(&inv)
	if err != nil {
		return nil, "", &apperrors.ExternalServiceError{Service: "pdf", Err: err}
	}
	return buf, invoice.Number(o.OrderNumber), nil
}

func (s *Service) loadCart(userID uint) (*cart.Cart, error) {
	var c cart.Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("cart")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

func (s *Service) loadCoupon(id uint) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := s.db.First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFound("coupon")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}
	return &c, nil
}

// freezeItems snapshots active cart lines into order items and coupon
// evaluator lines.
func (s *Service) freezeItems(items []cart.Item) ([]Item, []coupon.Line, error) {
	frozen := make([]Item, 0, len(items))
	lines := make([]coupon.Line, 0, len(items))
	for _, item := range items {
		var p product.Product
		if err := s.db.First(&p, item.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, apperrors.NewNotFound("product")
			}
			return nil, nil, fmt.Errorf("failed to retrieve product: %w", err)
		}
		var v product.Variant
		if err := s.db.First(&v, item.VariantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, apperrors.NewNotFound("product variant")
			}
			return nil, nil, fmt.Errorf("failed to retrieve variant: %w", err)
		}

		unitPrice := item.UnitPrice()
		frozen = append(frozen, Item{
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			SKU:        v.SKU,
			Name:       p.Name,
			Size:       v.Size,
			Color:      v.Color,
			Quantity:   item.Quantity,
			Price:      unitPrice,
			TotalPrice: pricing.LineTotal(item.Quantity, unitPrice),
		})
		lines = append(lines, coupon.Line{
			ProductID:  item.ProductID,
			CategoryID: p.CategoryID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
		})
	}
	return frozen, lines, nil
}

func (s *Service) clearCart(tx *gorm.DB, c *cart.Cart) error {
	if err := tx.Where("cart_id = ?", c.ID).Delete(&cart.Item{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	c.Clear()
	c.RemoveCoupon()
	c.Recalculate(s.config.Pricing.TaxRatePercent, 0)
	if err := tx.Save(c).Error; err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *Service) notifyStatus(o *Order) {
	var u user.User
	if err := s.db.First(&u, o.UserID).Error; err != nil {
		s.logger.WithError(err).WithField("order_id", o.ID).Warn("skipping status notification")
		return
	}

	note := ""
	if len(o.StatusHistory) > 0 {
		note = o.StatusHistory[len(o.StatusHistory)-1].Note
	}
	s.notifier.OrderStatusChanged(u.Email, u.Name, o.OrderNumber, string(o.Status), note)
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":   true,
		"placed_at":    true,
		"total_amount": true,
		"status":       true,
		"order_number": true,
	}
	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}
	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
