package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const (
	restaurantID = 1
	ngoID        = 2
)

func chatAt(watermarkRestaurant, watermarkNGO *time.Time, messages ...ChatMessage) Chat {
	return Chat{
		ID:                   10,
		Restaurant:           &UserRef{ID: restaurantID, Name: "Spice Garden"},
		NGO:                  &UserRef{ID: ngoID, Name: "Helping Hands"},
		Messages:             messages,
		LastReadByRestaurant: watermarkRestaurant,
		LastReadByNGO:        watermarkNGO,
	}
}

func msg(sender int, at time.Time) ChatMessage {
	return ChatMessage{Sender: sender, Message: "hello", Timestamp: at}
}

func TestUnreadCountNoWatermark(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := chatAt(nil, nil,
		msg(restaurantID, now),
		msg(restaurantID, now.Add(time.Minute)),
		msg(ngoID, now.Add(2*time.Minute)),
	)

	// without a watermark every message from the other party is unread
	assert.Equal(t, 1, chat.UnreadCount(restaurantID, RoleRestaurant))
	assert.Equal(t, 2, chat.UnreadCount(ngoID, RoleNGO))
}

func TestUnreadCountWithWatermark(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	watermark := now.Add(90 * time.Second)
	chat := chatAt(nil, &watermark,
		msg(restaurantID, now),
		msg(restaurantID, now.Add(time.Minute)),
		msg(restaurantID, now.Add(2*time.Minute)),
	)

	// only the message after the watermark counts
	assert.Equal(t, 1, chat.UnreadCount(ngoID, RoleNGO))
}

func TestUnreadCountOwnMessagesNeverCount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := chatAt(nil, nil,
		msg(ngoID, now),
		msg(ngoID, now.Add(time.Minute)),
	)

	assert.Equal(t, 0, chat.UnreadCount(ngoID, RoleNGO))
}

func TestUnreadDropsAfterMarkReadAndGrowsWithNewMessages(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := chatAt(nil, nil,
		msg(restaurantID, now),
		msg(restaurantID, now.Add(time.Minute)),
	)
	assert.Equal(t, 2, chat.UnreadCount(ngoID, RoleNGO))

	// marking read sets the watermark to "now"; everything existing at
	// mark time becomes read
	markTime := now.Add(2 * time.Minute)
	chat.LastReadByNGO = &markTime
	assert.Equal(t, 0, chat.UnreadCount(ngoID, RoleNGO))

	// a later message from the other party is unread again
	chat.Messages = append(chat.Messages, msg(restaurantID, markTime.Add(time.Second)))
	assert.Equal(t, 1, chat.UnreadCount(ngoID, RoleNGO))
}

func TestWatermarkPerRole(t *testing.T) {
	restaurantMark := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ngoMark := restaurantMark.Add(time.Hour)
	chat := chatAt(&restaurantMark, &ngoMark)

	assert.Equal(t, &restaurantMark, chat.Watermark(RoleRestaurant))
	assert.Equal(t, &ngoMark, chat.Watermark(RoleNGO))
}

func TestTotalUnreadBadge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	withUnread := chatAt(nil, nil,
		msg(restaurantID, now),
		msg(restaurantID, now.Add(time.Minute)),
		msg(restaurantID, now.Add(2*time.Minute)),
	)
	read := now.Add(time.Hour)
	allRead := chatAt(nil, &read, msg(restaurantID, now))

	// two chats with 3 and 0 unread yield a badge count of 3
	total := TotalUnread([]Chat{withUnread, allRead}, ngoID, RoleNGO)
	assert.Equal(t, 3, total)
}
