package models

import (
	"time"
)

type ChatMessage struct {
	ID        int       `json:"id" db:"id"`
	Sender    int       `json:"sender" db:"sender_id"`
	Message   string    `json:"message" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"sent_at"`
}

type Chat struct {
	ID                   int           `json:"id" db:"id"`
	Restaurant           *UserRef      `json:"restaurant"`
	NGO                  *UserRef      `json:"ngo"`
	Messages             []ChatMessage `json:"messages"`
	LastReadByRestaurant *time.Time    `json:"lastReadByRestaurant,omitempty" db:"last_read_by_restaurant"`
	LastReadByNGO        *time.Time    `json:"lastReadByNGO,omitempty" db:"last_read_by_ngo"`
	CreatedAt            time.Time     `json:"createdAt" db:"created_at"`
}

// Watermark returns the read watermark belonging to the given role.
func (c *Chat) Watermark(role string) *time.Time {
	if role == RoleRestaurant {
		return c.LastReadByRestaurant
	}
	return c.LastReadByNGO
}

// UnreadCount counts messages from the other party that are newer than the
// user's watermark. Without a watermark every message from the other party
// counts.
func (c *Chat) UnreadCount(userID int, role string) int {
	watermark := c.Watermark(role)
	count := 0
	for i := range c.Messages {
		if c.Messages[i].Sender == userID {
			continue
		}
		if watermark == nil || c.Messages[i].Timestamp.After(*watermark) {
			count++
		}
	}
	return count
}

// TotalUnread sums unread counts across all of a user's chats for the
// badge on the chat widget.
func TotalUnread(chats []Chat, userID int, role string) int {
	total := 0
	for i := range chats {
		total += chats[i].UnreadCount(userID, role)
	}
	return total
}
