package messaging

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/tradepost-dev/tradepost/internal/alerts"
	"github.com/tradepost-dev/tradepost/internal/authz"
	"github.com/tradepost-dev/tradepost/internal/db"
	"github.com/tradepost-dev/tradepost/internal/fault"
)

// Message is one entry in an order's buyer/seller thread.
type Message struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	SenderID    string     `json:"sender_id"`
	RecipientID string     `json:"recipient_id"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	ReadAt      *time.Time `json:"read_at"`
}

// threadParties resolves the buyer and seller of an order and checks the
// caller is one of them. Returns the counterparty.
func threadParties(ctx context.Context, orderID, callerID string) (string, error) {
	var buyerID, sellerID string
	err := db.Conn.QueryRow(ctx,
		`SELECT buyer_id, seller_id FROM orders WHERE id = $1`, orderID,
	).Scan(&buyerID, &sellerID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", fault.NotFound("order not found")
		}
		return "", fault.Unexpected("fetch order: %v", err)
	}
	switch callerID {
	case buyerID:
		return sellerID, nil
	case sellerID:
		return buyerID, nil
	}
	return "", fault.Forbidden("not a participant in this order")
}

// SendMessage - buyer or seller posts to an order thread
// POST /orders/:id/messages
func SendMessage(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	orderID := c.Param("id")
	var body struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&body); err != nil || body.Content == "" {
		return fault.Respond(c, fault.Invalid("content is required"))
	}

	ctx := c.Request().Context()
	recipientID, err := threadParties(ctx, orderID, caller.ID)
	if err != nil {
		return fault.Respond(c, err)
	}

	m := Message{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		SenderID:    caller.ID,
		RecipientID: recipientID,
		Content:     body.Content,
	}
	err = db.Conn.QueryRow(ctx,
		`INSERT INTO messages (id, order_id, sender_id, recipient_id, content)
         VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		m.ID, m.OrderID, m.SenderID, m.RecipientID, m.Content,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("send message: %v", err))
	}

	BroadcastNewMessage(orderID, m)
	alerts.Notify(recipientID, "message:new", "New message on your order", body.Content, m.ID)

	var recipientEmail string
	_ = db.Conn.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, recipientID).Scan(&recipientEmail)
	if recipientEmail != "" {
		_ = alerts.EnqueueMessageNew(orderID, caller.ID, recipientEmail, recipientID, body.Content)
	}

	return c.JSON(http.StatusCreated, m)
}

// ListMessages - get the conversation for an order
// GET /orders/:id/messages
func ListMessages(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	orderID := c.Param("id")
	ctx := c.Request().Context()
	if _, err := threadParties(ctx, orderID, caller.ID); err != nil {
		return fault.Respond(c, err)
	}

	query := `SELECT id, order_id, sender_id, recipient_id, content, created_at, read_at
              FROM messages WHERE order_id = $1 ORDER BY created_at ASC`
	args := []any{orderID}

	// Optional since filter for incremental fetches.
	if sinceStr := c.QueryParam("since"); sinceStr != "" {
		since, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			return fault.Respond(c, fault.Invalid("invalid since timestamp, use RFC3339"))
		}
		query = `SELECT id, order_id, sender_id, recipient_id, content, created_at, read_at
                 FROM messages WHERE order_id = $1 AND created_at > $2 ORDER BY created_at ASC`
		args = append(args, since)
	}

	rows, err := db.Conn.Query(ctx, query, args...)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("list messages: %v", err))
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.OrderID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt, &m.ReadAt); err != nil {
			return fault.Respond(c, fault.Unexpected("scan message: %v", err))
		}
		msgs = append(msgs, m)
	}

	return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// UnreadCount - unread messages for the caller in an order thread
// GET /orders/:id/messages/unread
func UnreadCount(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	orderID := c.Param("id")
	ctx := c.Request().Context()
	if _, err := threadParties(ctx, orderID, caller.ID); err != nil {
		return fault.Respond(c, err)
	}

	var count int64
	err := db.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE order_id = $1 AND recipient_id = $2 AND read_at IS NULL`,
		orderID, caller.ID,
	).Scan(&count)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("count unread: %v", err))
	}

	return c.JSON(http.StatusOK, echo.Map{"unread": count})
}

// MarkMessageRead - recipient marks a message as read
// PUT /orders/:id/messages/:message_id/read
func MarkMessageRead(c echo.Context) error {
	caller := authz.FromContext(c)
	if caller.ID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	orderID := c.Param("id")
	msgID := c.Param("message_id")
	ctx := c.Request().Context()

	var recipientID string
	err := db.Conn.QueryRow(ctx,
		`SELECT recipient_id FROM messages WHERE id = $1 AND order_id = $2`, msgID, orderID,
	).Scan(&recipientID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return fault.Respond(c, fault.NotFound("message not found"))
		}
		return fault.Respond(c, fault.Unexpected("fetch message: %v", err))
	}
	if recipientID != caller.ID {
		return fault.Respond(c, fault.Forbidden("not the recipient of this message"))
	}

	var readAt time.Time
	err = db.Conn.QueryRow(ctx,
		`UPDATE messages SET read_at = COALESCE(read_at, NOW())
         WHERE id = $1 AND recipient_id = $2 RETURNING read_at`,
		msgID, caller.ID,
	).Scan(&readAt)
	if err != nil {
		return fault.Respond(c, fault.Unexpected("mark read: %v", err))
	}

	BroadcastMessageRead(orderID, echo.Map{
		"message_id": msgID,
		"order_id":   orderID,
		"user_id":    caller.ID,
		"read_at":    readAt.UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"message_id": msgID, "read_at": readAt.UTC().Format(time.RFC3339)})
}
