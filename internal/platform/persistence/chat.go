package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// ChatStore persists chat rooms and messages through the chat procedures and
// resolves push destinations for room members.
type ChatStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewChatStore creates a chat collaborator over the given pool.
func NewChatStore(pool *pgxpool.Pool, logger zerolog.Logger) (*ChatStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool cannot be nil")
	}
	return &ChatStore{
		pool:   pool,
		logger: logger.With().Str("component", "ChatStore").Logger(),
	}, nil
}

// UpsertMessage persists a chat message. The procedure returns a response
// code (0 means the write did not take), the room id, and the message id.
func (s *ChatStore) UpsertMessage(ctx context.Context, msg live.ChatMessage) (live.UpsertResult, error) {
	var res live.UpsertResult
	err := s.pool.QueryRow(ctx,
		`SELECT response_code, room_id, message_id
		   FROM sp_upsert_chat_message($1, $2, $3, $4, $5)`,
		msg.RoomID, msg.SenderKey, msg.SenderName, msg.Text, msg.SentAt,
	).Scan(&res.Code, &res.RoomID, &res.MessageID)
	if err != nil {
		return live.UpsertResult{}, fmt.Errorf("upsert chat message for room %s: %w", msg.RoomID, err)
	}
	return res, nil
}

// UpsertRoom creates the room record if absent. Created reports first-ever
// creation.
func (s *ChatStore) UpsertRoom(ctx context.Context, room live.RoomName, creator live.Key) (live.UpsertResult, error) {
	var res live.UpsertResult
	err := s.pool.QueryRow(ctx,
		`SELECT response_code, room_id, created
		   FROM sp_upsert_chat_room($1, $2)`,
		string(room), string(creator),
	).Scan(&res.Code, &res.RoomID, &res.Created)
	if err != nil {
		return live.UpsertResult{}, fmt.Errorf("upsert chat room %s: %w", room, err)
	}
	return res, nil
}

// GetPushTokensForRoom returns web push tokens for every member of the room
// except the sender.
func (s *ChatStore) GetPushTokensForRoom(ctx context.Context, room live.RoomName, exclude live.Key) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT token FROM sp_get_room_push_tokens($1, $2)`,
		string(room), string(exclude),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch push tokens for room %s: %w", room, err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan push token for room %s: %w", room, err)
		}
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate push tokens for room %s: %w", room, err)
	}
	return tokens, nil
}

// GetMemberKeysForRoom returns the identity keys of the room's members.
func (s *ChatStore) GetMemberKeysForRoom(ctx context.Context, room live.RoomName) ([]live.Key, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT member_key FROM sp_get_room_members($1)`,
		string(room),
	)
	if err != nil {
		return nil, fmt.Errorf("fetch members for room %s: %w", room, err)
	}
	defer rows.Close()

	var keys []live.Key
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan member key for room %s: %w", room, err)
		}
		keys = append(keys, live.Key(key))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members for room %s: %w", room, err)
	}
	return keys, nil
}

// GetRecentMessages returns the most recent messages for a room, newest last.
func (s *ChatStore) GetRecentMessages(ctx context.Context, room live.RoomName, limit int) ([]live.ChatMessageResponse, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT room_id, message_id, sender_key, sender_name, message_text, sent_at
		   FROM sp_get_recent_messages($1, $2)`,
		string(room), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch recent messages for room %s: %w", room, err)
	}
	defer rows.Close()

	var messages []live.ChatMessageResponse
	for rows.Next() {
		var m live.ChatMessageResponse
		if err := rows.Scan(&m.RoomID, &m.MessageID, &m.SenderKey, &m.SenderName, &m.Text, &m.SentAt); err != nil {
			return nil, fmt.Errorf("scan recent message for room %s: %w", room, err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent messages for room %s: %w", room, err)
	}
	return messages, nil
}
