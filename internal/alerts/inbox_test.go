package alerts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInbox_PushAndList(t *testing.T) {
	inbox := NewMemoryInbox(100)

	inbox.Push("u1", Notification{Type: "order:shipped", Title: "first"})
	inbox.Push("u1", Notification{Type: "order:completed", Title: "second"})
	inbox.Push("u2", Notification{Type: "review:new", Title: "other user"})

	list := inbox.List("u1")
	require.Len(t, list, 2)
	// Newest first.
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
	assert.NotEmpty(t, list[0].ID)
	assert.False(t, list[0].CreatedAt.IsZero())

	assert.Len(t, inbox.List("u2"), 1)
	assert.Empty(t, inbox.List("u3"))
}

func TestInbox_EvictsOldestPastCapacity(t *testing.T) {
	inbox := NewMemoryInbox(100)

	for i := 0; i < 150; i++ {
		inbox.Push("u1", Notification{Title: fmt.Sprintf("n%d", i)})
	}

	list := inbox.List("u1")
	require.Len(t, list, 100)
	assert.Equal(t, "n149", list[0].Title)
	assert.Equal(t, "n50", list[99].Title)
}

func TestInbox_MarkRead(t *testing.T) {
	inbox := NewMemoryInbox(10)

	n := inbox.Push("u1", Notification{Title: "hello"})
	require.Nil(t, inbox.List("u1")[0].ReadAt)

	assert.True(t, inbox.MarkRead("u1", n.ID))
	assert.NotNil(t, inbox.List("u1")[0].ReadAt)

	// Marking twice stays read, unknown ids and users report false.
	assert.True(t, inbox.MarkRead("u1", n.ID))
	assert.False(t, inbox.MarkRead("u1", "missing"))
	assert.False(t, inbox.MarkRead("u2", n.ID))
}

func TestInbox_CapacityIsPerUser(t *testing.T) {
	inbox := NewMemoryInbox(5)

	for i := 0; i < 8; i++ {
		inbox.Push("a", Notification{Title: fmt.Sprintf("a%d", i)})
		inbox.Push("b", Notification{Title: fmt.Sprintf("b%d", i)})
	}

	assert.Len(t, inbox.List("a"), 5)
	assert.Len(t, inbox.List("b"), 5)
}
