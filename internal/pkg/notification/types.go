// internal/pkg/notification/types.go
package notification

// Kind labels what a message is about, for logging and metrics.
type Kind string

const (
	KindOrderPlaced     Kind = "order_placed"
	KindOrderStatus     Kind = "order_status"
	KindPaymentReceived Kind = "payment_received"
)

// Message is one outbound customer notification.
type Message struct {
	To          []string `json:"to"`
	Subject     string   `json:"subject"`
	HTMLContent string   `json:"html_content"`
	TextContent string   `json:"text_content,omitempty"`
	Kind        Kind     `json:"kind"`
}

const orderPlacedTemplate = `
<html>
<body>
  <h2>Thank you for your order, {{.UserName}}!</h2>
  <p>Your order <strong>{{.OrderNumber}}</strong> has been placed.</p>
  <p>Order total: ₹{{.Total}}</p>
  <p>We will let you know as soon as it ships.</p>
</body>
</html>`

const orderStatusTemplate = `
<html>
<body>
  <h2>Order update</h2>
  <p>Hi {{.UserName}},</p>
  <p>Your order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
  {{if .Note}}<p>{{.Note}}</p>{{end}}
</body>
</html>`

const paymentReceivedTemplate = `
<html>
<body>
  <h2>Payment received</h2>
  <p>Hi {{.UserName}},</p>
  <p>We received your payment of ₹{{.Amount}} for order <strong>{{.OrderNumber}}</strong>.</p>
</body>
</html>`
