package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPresenceRegisterUnregister(t *testing.T) {
	p := NewPresence()
	userID := uuid.New()

	assert.False(t, p.IsOnline(userID))

	t.Run("first registration flips online", func(t *testing.T) {
		first := p.Register(userID, "conn-1")
		assert.True(t, first)
		assert.True(t, p.IsOnline(userID))
	})

	t.Run("second connection is not first", func(t *testing.T) {
		first := p.Register(userID, "conn-2")
		assert.False(t, first)
	})

	t.Run("registering same pair twice is idempotent", func(t *testing.T) {
		first := p.Register(userID, "conn-2")
		assert.False(t, first)
		assert.Equal(t, []uuid.UUID{userID}, p.OnlineUserIDs())
	})

	t.Run("user stays online until last connection leaves", func(t *testing.T) {
		last := p.Unregister(userID, "conn-1")
		assert.False(t, last)
		assert.True(t, p.IsOnline(userID))

		last = p.Unregister(userID, "conn-2")
		assert.True(t, last)
		assert.False(t, p.IsOnline(userID))
		assert.Empty(t, p.OnlineUserIDs())
	})

	t.Run("unknown connection is a no-op", func(t *testing.T) {
		assert.False(t, p.Unregister(userID, "conn-99"))
		assert.False(t, p.Unregister(uuid.New(), "conn-1"))
	})
}

func TestPresenceOnlineUserIDs(t *testing.T) {
	p := NewPresence()
	u1, u2 := uuid.New(), uuid.New()

	p.Register(u1, "a")
	p.Register(u2, "b")

	ids := p.OnlineUserIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, u1)
	assert.Contains(t, ids, u2)
}
