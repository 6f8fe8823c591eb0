package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FoodBridge/server/internal/models"

	"github.com/go-chi/chi/v5"
)

// latestMessage guards against an empty message list so broadcast paths
// never index past the end after a row scan was skipped.
func latestMessage(chat *models.Chat) (models.ChatMessage, bool) {
	if chat == nil || len(chat.Messages) == 0 {
		return models.ChatMessage{}, false
	}
	return chat.Messages[len(chat.Messages)-1], true
}

func chatIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		log.Printf("Invalid chat ID: %s", idStr)
		writeMessage(w, http.StatusBadRequest, "Invalid chat ID")
		return 0, false
	}
	return id, true
}

// MyChats returns every conversation with its full message list; the
// client derives unread counts from the watermarks, and the same
// computation backs the unreadCount field included per chat.
func MyChats(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	chats, err := chatService.GetChatsByUserId(r.Context(), sess.UserID, sess.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type chatWithUnread struct {
		models.Chat
		UnreadCount int `json:"unreadCount"`
	}

	payload := make([]chatWithUnread, 0, len(chats))
	for i := range chats {
		payload = append(payload, chatWithUnread{
			Chat:        chats[i],
			UnreadCount: chats[i].UnreadCount(sess.UserID, sess.Role),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chats":       payload,
		"totalUnread": models.TotalUnread(chats, sess.UserID, sess.Role),
	})
}

func GetChat(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	chat, err := chatService.GetChatById(r.Context(), id, sess.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chat": chat})
}

func SendMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chat, err := chatService.SaveMessage(r.Context(), id, sess.UserID, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if latest, ok := latestMessage(chat); ok {
		broadcastToChat(r.Context(), chat.ID, "new_message", map[string]interface{}{
			"chat_id":   chat.ID,
			"sender":    latest.Sender,
			"message":   latest.Message,
			"timestamp": latest.Timestamp,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"chat":    chat,
	})
}

func MarkChatRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := chatIDParam(w, r)
	if !ok {
		return
	}

	if err := chatService.MarkRead(r.Context(), id, sess.UserID, sess.Role); err != nil {
		writeServiceError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Chat marked as read")
}
