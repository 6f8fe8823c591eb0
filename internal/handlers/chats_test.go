package handlers

import (
	"testing"
	"time"

	"FoodBridge/server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestMessageEmptyChat(t *testing.T) {
	_, ok := latestMessage(&models.Chat{ID: 1})
	assert.False(t, ok)

	_, ok = latestMessage(nil)
	assert.False(t, ok)
}

func TestLatestMessageReturnsNewest(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	chat := &models.Chat{
		ID: 1,
		Messages: []models.ChatMessage{
			{ID: 1, Sender: 1, Message: "first", Timestamp: now},
			{ID: 2, Sender: 2, Message: "second", Timestamp: now.Add(time.Minute)},
		},
	}

	latest, ok := latestMessage(chat)
	require.True(t, ok)
	assert.Equal(t, 2, latest.ID)
	assert.Equal(t, "second", latest.Message)
}
