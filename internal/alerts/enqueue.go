package alerts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

func enqueue(taskType string, payload any) error {
	b, _ := json.Marshal(payload)
	task := asynq.NewTask(taskType, b)
	_, err := ensureClient().Enqueue(task, asynq.Queue("emails"))
	return err
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name string) error {
	env := EmailEnvelope{
		To:      email,
		Subject: fmt.Sprintf("Welcome to Tradepost, %s!", name),
		Body:    fmt.Sprintf("Hi %s, thanks for joining Tradepost. List something you no longer need, or find your next great deal.", name),
	}
	return enqueue(TaskWelcomeEmail, WelcomeEmailPayload{
		UserID: userID, Name: name, Email: email, Envelope: env, SentAt: time.Now(),
	})
}

func enqueueOrderEvent(event, orderID, buyerID, sellerID, email, subject, body string, amount int64) error {
	env := EmailEnvelope{To: email, Subject: subject, Body: body}
	return enqueue(event, OrderEventPayload{
		Event: event, OrderID: orderID, BuyerID: buyerID, SellerID: sellerID,
		Email: email, Amount: amount, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueOrderConfirmed notifies the buyer that the seller confirmed the order
func EnqueueOrderConfirmed(orderID, buyerID, sellerID, buyerEmail string, amount int64) error {
	return enqueueOrderEvent(TaskOrderConfirmed, orderID, buyerID, sellerID, buyerEmail,
		"Your order has been confirmed",
		fmt.Sprintf("Order %s is confirmed by the seller. Amount %d is held in escrow.", orderID, amount),
		amount)
}

// EnqueueOrderShipped notifies the buyer that the order is on its way
func EnqueueOrderShipped(orderID, buyerID, sellerID, buyerEmail string, amount int64) error {
	return enqueueOrderEvent(TaskOrderShipped, orderID, buyerID, sellerID, buyerEmail,
		"Your order has shipped",
		fmt.Sprintf("Order %s has been shipped. Confirm delivery once it arrives to release payment.", orderID),
		amount)
}

// EnqueueOrderCompleted notifies the seller that the buyer confirmed delivery
func EnqueueOrderCompleted(orderID, buyerID, sellerID, sellerEmail string, amount int64) error {
	return enqueueOrderEvent(TaskOrderCompleted, orderID, buyerID, sellerID, sellerEmail,
		"Order completed and payment released",
		fmt.Sprintf("Order %s is completed. Amount %d has been released from escrow.", orderID, amount),
		amount)
}

// EnqueueOrderCancelled notifies the counterparty that the order was cancelled
func EnqueueOrderCancelled(orderID, buyerID, sellerID, email string, amount int64) error {
	return enqueueOrderEvent(TaskOrderCancelled, orderID, buyerID, sellerID, email,
		"Order cancelled",
		fmt.Sprintf("Order %s was cancelled. Amount %d in escrow has been refunded.", orderID, amount),
		amount)
}

// EnqueueReviewReceived notifies the seller about a new review
func EnqueueReviewReceived(reviewID, productID, sellerID, sellerEmail string, rating int) error {
	env := EmailEnvelope{
		To:      sellerEmail,
		Subject: "You received a new review",
		Body:    fmt.Sprintf("A buyer left a %d-star review on one of your listings.", rating),
	}
	return enqueue(TaskReviewReceived, ReviewReceivedPayload{
		ReviewID: reviewID, ProductID: productID, SellerID: sellerID,
		Email: sellerEmail, Rating: rating, Envelope: env, SentAt: time.Now(),
	})
}

// EnqueueMessageNew notifies the recipient about a new order message
func EnqueueMessageNew(orderID, senderID, recipientEmail, recipientID, body string) error {
	env := EmailEnvelope{
		To:      recipientEmail,
		Subject: "New message on your order",
		Body:    body,
	}
	return enqueue(TaskMessageNew, MessageNewPayload{
		OrderID: orderID, SenderID: senderID, Recipient: recipientID,
		Email: recipientEmail, Body: body, Envelope: env, SentAt: time.Now(),
	})
}
