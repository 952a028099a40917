package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app alert delivered to a single user.
type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Reference string     `json:"reference,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at"`
}

// Inbox is a process-scoped notification store keyed by user id.
// Implementations evict the oldest entries past their capacity.
type Inbox interface {
	Push(userID string, n Notification) Notification
	List(userID string) []Notification
	MarkRead(userID, notificationID string) bool
}

type memoryInbox struct {
	mu       sync.Mutex
	capacity int
	perUser  map[string][]Notification
}

// NewMemoryInbox returns an Inbox holding at most capacity
// notifications per user.
func NewMemoryInbox(capacity int) Inbox {
	if capacity <= 0 {
		capacity = 1
	}
	return &memoryInbox{capacity: capacity, perUser: make(map[string][]Notification)}
}

func (m *memoryInbox) Push(userID string, n Notification) Notification {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.perUser[userID], n)
	if len(list) > m.capacity {
		list = list[len(list)-m.capacity:]
	}
	m.perUser[userID] = list
	return n
}

// List returns the user's notifications newest first.
func (m *memoryInbox) List(userID string) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.perUser[userID]
	out := make([]Notification, len(list))
	for i, n := range list {
		out[len(list)-1-i] = n
	}
	return out
}

func (m *memoryInbox) MarkRead(userID, notificationID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.perUser[userID]
	for i := range list {
		if list[i].ID == notificationID {
			if list[i].ReadAt == nil {
				now := time.Now()
				list[i].ReadAt = &now
			}
			return true
		}
	}
	return false
}
