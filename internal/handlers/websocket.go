package handlers

import (
	"context"
	"log"
	"net/http"

	"FoodBridge/server/internal/pool"
	"FoodBridge/server/internal/utils"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func broadcastToChat(ctx context.Context, chatID int, eventType string, eventData map[string]interface{}) {
	pool.GlobalPool.BroadcastEvent(ctx, chatID, eventType, eventData)
}

// WebSocketHandler is the optional push channel: clients that connect get
// new_message events immediately instead of waiting for their next poll.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	sess, err := utils.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("User %d connected to WebSocket", sess.UserID)

	clientPool := pool.GlobalPool
	clientPool.AddClient(sess.UserID, conn)
	defer clientPool.RemoveClient(sess.UserID)

	for {
		var msg struct {
			Event   string `json:"event"`
			ChatID  int    `json:"chat_id"`
			Content string `json:"content"`
		}

		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("Error reading message from user %d: %v", sess.UserID, err)
			break
		}

		switch msg.Event {
		case "send_message":
			chat, err := chatService.SaveMessage(r.Context(), msg.ChatID, sess.UserID, msg.Content)
			if err != nil {
				log.Printf("Error saving message from user %d: %v", sess.UserID, err)
				continue
			}

			if latest, ok := latestMessage(chat); ok {
				clientPool.BroadcastEvent(r.Context(), chat.ID, "new_message", map[string]interface{}{
					"chat_id":   chat.ID,
					"sender":    latest.Sender,
					"message":   latest.Message,
					"timestamp": latest.Timestamp,
				})
			}

		case "mark_read":
			if err := chatService.MarkRead(r.Context(), msg.ChatID, sess.UserID, sess.Role); err != nil {
				log.Printf("Error marking chat %d read for user %d: %v", msg.ChatID, sess.UserID, err)
			}

		default:
			log.Printf("User %d sent unknown event %q", sess.UserID, msg.Event)
		}
	}
}
