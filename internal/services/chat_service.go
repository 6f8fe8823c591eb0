package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"FoodBridge/server/internal/db"
	"FoodBridge/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jonboulle/clockwork"
)

type ChatService interface {
	EnsureChat(ctx context.Context, restaurantID, ngoID int) (int, error)
	GetChatsByUserId(ctx context.Context, userID int, role string) ([]models.Chat, error)
	GetChatById(ctx context.Context, chatID, userID int) (*models.Chat, error)
	IsUserParticipant(ctx context.Context, chatID, userID int) (bool, error)
	SaveMessage(ctx context.Context, chatID, senderID int, content string) (*models.Chat, error)
	MarkRead(ctx context.Context, chatID, userID int, role string) error
	ParticipantIDs(ctx context.Context, chatID int) ([]int, error)
}

type chatService struct {
	clock clockwork.Clock
}

func NewChatService(clock clockwork.Clock) *chatService {
	return &chatService{clock: clock}
}

// EnsureChat returns the chat for a restaurant/NGO pairing, creating it on
// first contact. One chat per pairing; accepting another donation from the
// same pair reuses it.
func (cs *chatService) EnsureChat(ctx context.Context, restaurantID, ngoID int) (int, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id").
		From("chats").
		Where(squirrel.Eq{"restaurant_id": restaurantID, "ngo_id": ngoID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return 0, err
	}

	var chatID int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&chatID)
	if err == nil {
		return chatID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("Error checking chat for restaurant %d and NGO %d: %v", restaurantID, ngoID, err)
		return 0, err
	}

	insert := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("chats").
		Columns("restaurant_id", "ngo_id", "created_at").
		Values(restaurantID, ngoID, cs.clock.Now()).
		Suffix("ON CONFLICT (restaurant_id, ngo_id) DO UPDATE SET restaurant_id = EXCLUDED.restaurant_id").
		Suffix("RETURNING id")

	sqlStr, args, err = insert.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return 0, err
	}

	log.Printf("Executing SQL: %s, Args: %v", sqlStr, args)

	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&chatID)
	if err != nil {
		log.Printf("Error creating chat for restaurant %d and NGO %d: %v", restaurantID, ngoID, err)
		return 0, err
	}

	log.Printf("Chat %d created for restaurant %d and NGO %d", chatID, restaurantID, ngoID)
	return chatID, nil
}

func chatSelect() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("c.id", "c.last_read_by_restaurant", "c.last_read_by_ngo", "c.created_at",
			"r.id", "r.name", "r.avatar", "n.id", "n.name", "n.avatar").
		From("chats c").
		LeftJoin("users r ON c.restaurant_id = r.id").
		LeftJoin("users n ON c.ngo_id = n.id")
}

func scanChat(row pgx.Row) (*models.Chat, error) {
	var chat models.Chat
	var rID, nID *int
	var rName, nName *string
	var rAvatar, nAvatar *string

	err := row.Scan(&chat.ID, &chat.LastReadByRestaurant, &chat.LastReadByNGO, &chat.CreatedAt,
		&rID, &rName, &rAvatar, &nID, &nName, &nAvatar)
	if err != nil {
		return nil, err
	}

	if rID != nil {
		chat.Restaurant = &models.UserRef{ID: *rID, Avatar: rAvatar}
		if rName != nil {
			chat.Restaurant.Name = *rName
		}
	}
	if nID != nil {
		chat.NGO = &models.UserRef{ID: *nID, Avatar: nAvatar}
		if nName != nil {
			chat.NGO.Name = *nName
		}
	}
	return &chat, nil
}

func (cs *chatService) GetChatsByUserId(ctx context.Context, userID int, role string) ([]models.Chat, error) {
	var owner squirrel.Eq
	if role == models.RoleRestaurant {
		owner = squirrel.Eq{"c.restaurant_id": userID}
	} else {
		owner = squirrel.Eq{"c.ngo_id": userID}
	}

	query := chatSelect().Where(owner).OrderBy("c.created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error getting chats for user %d: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := scanChat(rows)
		if err != nil {
			log.Printf("Error scanning chat row: %v", err)
			continue
		}
		chats = append(chats, *chat)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range chats {
		messages, err := cs.getMessages(ctx, chats[i].ID)
		if err != nil {
			log.Printf("Error getting messages for chat %d: %v", chats[i].ID, err)
			return nil, err
		}
		chats[i].Messages = messages
	}

	log.Printf("Fetched %d chats for user %d", len(chats), userID)
	return chats, nil
}

func (cs *chatService) GetChatById(ctx context.Context, chatID, userID int) (*models.Chat, error) {
	isParticipant, err := cs.IsUserParticipant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !isParticipant {
		log.Printf("User %d is not a participant of chat %d", userID, chatID)
		return nil, models.ErrUserNotParticipant
	}

	return cs.getChat(ctx, chatID)
}

func (cs *chatService) getChat(ctx context.Context, chatID int) (*models.Chat, error) {
	query := chatSelect().Where(squirrel.Eq{"c.id": chatID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	chat, err := scanChat(db.Pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChatNotFound
		}
		log.Printf("Error getting chat %d: %v", chatID, err)
		return nil, err
	}

	chat.Messages, err = cs.getMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// messages are returned oldest first; unread counting relies on the
// timestamps, not the order.
func (cs *chatService) getMessages(ctx context.Context, chatID int) ([]models.ChatMessage, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "sender_id", "content", "sent_at").
		From("messages").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("sent_at ASC", "id ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching messages for chat %d: %v", chatID, err)
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.ChatMessage, 0)
	for rows.Next() {
		var msg models.ChatMessage
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Message, &msg.Timestamp); err != nil {
			log.Printf("Error scanning message row: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (cs *chatService) IsUserParticipant(ctx context.Context, chatID, userID int) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM chats
            WHERE id = $1 AND (restaurant_id = $2 OR ngo_id = $2)
        )
    `

	var exists bool
	err := db.Pool.QueryRow(ctx, query, chatID, userID).Scan(&exists)
	if err != nil {
		log.Printf("Error checking if user %d is a participant of chat %d: %v", userID, chatID, err)
		return false, err
	}

	return exists, nil
}

// SaveMessage appends a trimmed message and returns the updated
// conversation so the caller can reconcile without a second fetch.
func (cs *chatService) SaveMessage(ctx context.Context, chatID, senderID int, content string) (*models.Chat, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, models.ErrEmptyMessage
	}

	isParticipant, err := cs.IsUserParticipant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant {
		return nil, models.ErrUserNotParticipant
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("messages").
		Columns("chat_id", "sender_id", "content", "sent_at").
		Values(chatID, senderID, trimmed, cs.clock.Now()).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var messageID int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&messageID)
	if err != nil {
		log.Printf("Error saving message: %v", err)
		return nil, err
	}

	log.Printf("Message %d saved to chat %d by user %d", messageID, chatID, senderID)
	return cs.getChat(ctx, chatID)
}

// ParticipantIDs returns both sides of the pairing for event broadcast.
func (cs *chatService) ParticipantIDs(ctx context.Context, chatID int) ([]int, error) {
	var restaurantID, ngoID int
	err := db.Pool.QueryRow(ctx,
		`SELECT restaurant_id, ngo_id FROM chats WHERE id = $1`, chatID).Scan(&restaurantID, &ngoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChatNotFound
		}
		log.Printf("Error getting participants for chat %d: %v", chatID, err)
		return nil, err
	}
	return []int{restaurantID, ngoID}, nil
}

// MarkRead advances the caller's watermark to now. GREATEST keeps the
// watermark monotonically non-decreasing under out-of-order calls.
func (cs *chatService) MarkRead(ctx context.Context, chatID, userID int, role string) error {
	column := "last_read_by_ngo"
	owner := "ngo_id"
	if role == models.RoleRestaurant {
		column = "last_read_by_restaurant"
		owner = "restaurant_id"
	}

	sqlStr := `UPDATE chats SET ` + column + ` = GREATEST(COALESCE(` + column + `, 'epoch'::timestamptz), $1) WHERE id = $2 AND ` + owner + ` = $3`

	result, err := db.Pool.Exec(ctx, sqlStr, cs.clock.Now(), chatID, userID)
	if err != nil {
		log.Printf("Error marking chat %d as read for user %d: %v", chatID, userID, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrChatNotFound
	}

	log.Printf("Chat %d marked as read by user %d (%s)", chatID, userID, role)
	return nil
}
