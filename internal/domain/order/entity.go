// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/your-org/ambika-backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPlaced         Status = "placed"
	StatusConfirmed      Status = "confirmed"
	StatusProcessing     Status = "processing"
	StatusPacked         Status = "packed"
	StatusShipped        Status = "shipped"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusReturned       Status = "returned"
	StatusRefunded       Status = "refunded"
)

// PaymentStatus represents the status of an order's payment
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is the payment sub-record embedded in an order
type Payment struct {
	Method           string        `gorm:"size:50" json:"method"` // razorpay, cod, upi, card
	Status           PaymentStatus `gorm:"size:20;default:'pending'" json:"status"`
	GatewayReference string        `gorm:"size:255" json:"gateway_reference,omitempty"`
	PaidAt           *time.Time    `json:"paid_at,omitempty"`
}

// Address is the shipping address snapshot embedded in an order
type Address struct {
	Name         string `gorm:"size:100" json:"name"`
	Phone        string `gorm:"size:20" json:"phone"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	Pincode      string `gorm:"size:10" json:"pincode"`
	Landmark     string `gorm:"size:255" json:"landmark"`
}

// Order is one completed checkout. Items and the pricing breakdown
// are frozen copies taken at creation time; after that only the
// status, the payment sub-record and the status history mutate.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Status      Status `gorm:"not null;default:'placed';index" json:"status"`

	// Pricing breakdown, each component stored independently
	Subtotal       int64  `gorm:"not null" json:"subtotal"`
	DiscountAmount int64  `gorm:"default:0" json:"discount_amount"`
	TaxAmount      int64  `gorm:"default:0" json:"tax_amount"`
	TaxRate        int64  `gorm:"default:0" json:"tax_rate"`
	ShippingAmount int64  `gorm:"default:0" json:"shipping_amount"`
	ShippingMethod string `gorm:"size:50" json:"shipping_method"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	Currency       string `gorm:"size:3;default:'INR'" json:"currency"`

	// Coupon applied at checkout, if any
	CouponID   *uint  `gorm:"index" json:"coupon_id,omitempty"`
	CouponCode string `gorm:"size:50" json:"coupon_code,omitempty"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	Payment         Payment `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	Notes              string `gorm:"type:text" json:"notes,omitempty"`
	InternalNotes      string `gorm:"type:text" json:"-"`
	CancellationReason string `gorm:"type:text" json:"cancellation_reason,omitempty"`
	ReturnReason       string `gorm:"type:text" json:"return_reason,omitempty"`
	InvoiceNumber      string `gorm:"size:60" json:"invoice_number,omitempty"`

	// Timestamps set as the order moves through its lifecycle
	PlacedAt    time.Time  `json:"placed_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	ShippedAt   *time.Time `json:"shipped_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []Item          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// Item is one frozen line of an order
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	VariantID uint      `gorm:"not null;index" json:"variant_id"`
	SKU       string    `gorm:"not null;size:100" json:"sku"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Size      string    `gorm:"size:20" json:"size"`
	Color     string    `gorm:"size:50" json:"color"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Price     int64     `gorm:"not null" json:"price"` // Per unit, in paise
	TotalPrice int64    `gorm:"not null" json:"total_price"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusHistory is one append-only entry in an order's audit trail
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null;size:20" json:"status"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Note      string    `gorm:"type:text" json:"note"`
	Actor     uint      `gorm:"index" json:"actor"` // User ID that drove the change, 0 for system
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string         { return "orders" }
func (Item) TableName() string          { return "order_items" }
func (StatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber builds the human-readable order identifier:
// an AMB prefix, the creation instant in base 36 and a random suffix,
// uppercased. Assigned once at creation, never regenerated.
func GenerateOrderNumber(now time.Time) string {
	timestamp := strconv.FormatInt(now.UnixMilli(), 36)
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return strings.ToUpper(fmt.Sprintf("AMB-%s-%s", timestamp, random))
}

// AddStatusHistory appends an audit entry. History is append-only;
// nothing ever edits or truncates it.
func (o *Order) AddStatusHistory(status Status, note string, actor uint) {
	o.StatusHistory = append(o.StatusHistory, StatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Timestamp: time.Now().UTC(),
		Note:      note,
		Actor:     actor,
	})
}

// SetStatus moves the order to a new status, stamping the matching
// lifecycle timestamp and appending a history entry. Legality of the
// move is the state machine's job; SetStatus only records it.
func (o *Order) SetStatus(status Status, note string, actor uint) {
	now := time.Now().UTC()
	o.Status = status
	switch status {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	case StatusReturned:
		o.ReturnedAt = &now
	}
	if note == "" {
		note = fmt.Sprintf("Order status changed to %s", status)
	}
	o.AddStatusHistory(status, note, actor)
}

// InventoryLines projects the frozen items into stock ledger lines.
func (o *Order) InventoryLines() []inventory.Line {
	lines := make([]inventory.Line, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, inventory.Line{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// IsTerminal reports whether no further transition can leave status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCancelled || o.Status == StatusRefunded
}
