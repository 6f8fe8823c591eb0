package pool

import (
	"context"
	"log"
	"sync"

	"FoodBridge/server/internal/services"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

type ClientPool interface {
	AddClient(userID int, conn *websocket.Conn)
	GetClient(userID int) *Client
	RemoveClient(userID int)
	BroadcastEvent(ctx context.Context, chatID int, eventType string, data interface{})
}

type Client struct {
	UserID int
	Conn   *websocket.Conn
	Ctx    context.Context
	Cancel context.CancelFunc
}

var chatService services.ChatService

func init() {
	chatService = services.NewChatService(clockwork.NewRealClock())
}

type Pool struct {
	mu      sync.Mutex
	clients map[int]*Client
}

var GlobalPool ClientPool = &Pool{
	clients: make(map[int]*Client),
}

func (p *Pool) AddClient(userID int, conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	p.clients[userID] = &Client{
		UserID: userID,
		Conn:   conn,
		Ctx:    ctx,
		Cancel: cancel,
	}
	log.Printf("Client %d added to pool", userID)
}

func (p *Pool) GetClient(userID int) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.clients[userID]
}

func (p *Pool) RemoveClient(userID int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[userID]; ok {
		client.Cancel()
		delete(p.clients, userID)
		log.Printf("Client %d removed from pool", userID)
	}
}

// BroadcastEvent pushes a chat event to both sides of the pairing that
// are currently connected. Disconnected clients are dropped from the
// pool; polling clients simply pick the change up on their next fetch.
func (p *Pool) BroadcastEvent(ctx context.Context, chatID int, eventType string, data interface{}) {
	participants, err := chatService.ParticipantIDs(ctx, chatID)
	if err != nil {
		log.Printf("Error getting participants for chat %d: %v", chatID, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, userID := range participants {
		client := p.clients[userID]
		if client == nil {
			continue
		}

		err := client.Conn.WriteJSON(map[string]interface{}{
			"event": eventType,
			"data":  data,
		})
		if err != nil {
			log.Printf("Error sending event to user %d: %v", userID, err)
			client.Conn.Close()
			client.Cancel()
			delete(p.clients, userID)
			continue
		}

		log.Printf("Sent %s event for chat %d to user %d", eventType, chatID, userID)
	}
}
