package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
)

var (
	client *asynq.Client
	server *asynq.Server
	inbox  Inbox
)

// Init starts the Asynq server and the in-app notification inbox.
// In-app notifications live in process memory only, capped at 100 per
// user with oldest-first eviction.
func Init() {
	inbox = NewMemoryInbox(100)

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		host := os.Getenv("REDIS_HOST")
		if host == "" {
			host = "127.0.0.1"
		}
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		redisAddr = host + ":" + port
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskOrderConfirmed, handleOrderEvent)
	mux.HandleFunc(TaskOrderShipped, handleOrderEvent)
	mux.HandleFunc(TaskOrderCompleted, handleOrderEvent)
	mux.HandleFunc(TaskOrderCancelled, handleOrderEvent)
	mux.HandleFunc(TaskReviewReceived, handleReviewReceived)
	mux.HandleFunc(TaskMessageNew, handleMessageNew)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

// Notify pushes an in-app notification, best-effort.
func Notify(userID, ntype, title, body, reference string) {
	if inbox == nil {
		inbox = NewMemoryInbox(100)
	}
	inbox.Push(userID, Notification{Type: ntype, Title: title, Body: body, Reference: reference})
}

// UserInbox exposes the process-scoped inbox to the HTTP layer.
func UserInbox() Inbox {
	if inbox == nil {
		inbox = NewMemoryInbox(100)
	}
	return inbox
}

// Handlers below parse payloads and send email via the mailer.

func handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] WelcomeEmail send failed: %v", err)
		return err
	}
	log.Printf("[notify] WelcomeEmail sent -> to=%s user=%s", p.Email, p.UserID)
	return nil
}

func handleOrderEvent(_ context.Context, t *asynq.Task) error {
	var p OrderEventPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] %s send failed: %v", p.Event, err)
		return err
	}
	log.Printf("[notify] %s sent -> order=%s to=%s", p.Event, p.OrderID, p.Email)
	return nil
}

func handleReviewReceived(_ context.Context, t *asynq.Task) error {
	var p ReviewReceivedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] ReviewReceived send failed: %v", err)
		return err
	}
	log.Printf("[notify] ReviewReceived sent -> review=%s to=%s", p.ReviewID, p.Email)
	return nil
}

func handleMessageNew(_ context.Context, t *asynq.Task) error {
	var p MessageNewPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] MessageNew send failed: %v", err)
		return err
	}
	log.Printf("[notify] MessageNew sent -> order=%s to=%s", p.OrderID, p.Email)
	return nil
}
