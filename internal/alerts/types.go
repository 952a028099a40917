package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail   = "email:welcome"
	TaskOrderConfirmed = "email:order_confirmed"
	TaskOrderShipped   = "email:order_shipped"
	TaskOrderCompleted = "email:order_completed"
	TaskOrderCancelled = "email:order_cancelled"
	TaskReviewReceived = "email:review_received"
	TaskMessageNew     = "email:message_new"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Welcome email payload
type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// OrderEventPayload covers the order lifecycle emails; Event mirrors
// the task type so one handler can log all of them.
type OrderEventPayload struct {
	Event    string        `json:"event"`
	OrderID  string        `json:"order_id"`
	BuyerID  string        `json:"buyer_id"`
	SellerID string        `json:"seller_id"`
	Email    string        `json:"email"`
	Amount   int64         `json:"amount"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

// Review received payload (sent to seller)
type ReviewReceivedPayload struct {
	ReviewID  string        `json:"review_id"`
	ProductID string        `json:"product_id"`
	SellerID  string        `json:"seller_id"`
	Email     string        `json:"email"`
	Rating    int           `json:"rating"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}

// Message new payload (sent to recipient on new message)
type MessageNewPayload struct {
	OrderID   string        `json:"order_id"`
	SenderID  string        `json:"sender_id"`
	Recipient string        `json:"recipient"`
	Email     string        `json:"email"`
	Body      string        `json:"body"`
	Envelope  EmailEnvelope `json:"envelope"`
	SentAt    time.Time     `json:"sent_at"`
}
