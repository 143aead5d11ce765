package live

import "context"

// PersistenceFailed is the response code a store returns when the underlying
// procedure reports zero rows affected.
const PersistenceFailed = 0

// UpsertResult carries the outcome of a chat upsert procedure.
type UpsertResult struct {
	// Code is the procedure's response code; PersistenceFailed means the
	// write did not take and the caller must not broadcast.
	Code int
	// RoomID is the (possibly newly created) room record id.
	RoomID int64
	// MessageID is the persisted message id, when applicable.
	MessageID int64
	// Created reports first-ever creation of the room record.
	Created bool
}

// TrackingStore persists live GPS state for assignments.
type TrackingStore interface {
	// SaveCoordinateSample records one GPS fix.
	SaveCoordinateSample(ctx context.Context, sample CoordinateSample) error

	// GetStoredPath returns the previously saved direction path for an
	// assignment, or an empty path if none was stored.
	GetStoredPath(ctx context.Context, assignmentID int64) (DirectionPath, error)

	// SavePath inserts or updates the direction path for an assignment.
	SavePath(ctx context.Context, path DirectionPath, update bool) error
}

// ChatStore persists chat rooms and messages and resolves push destinations.
type ChatStore interface {
	// UpsertMessage persists a chat message, returning the procedure's
	// response code and the room/message ids.
	UpsertMessage(ctx context.Context, msg ChatMessage) (UpsertResult, error)

	// UpsertRoom creates the room record if absent. Created is true only on
	// first-ever creation.
	UpsertRoom(ctx context.Context, room RoomName, creator Key) (UpsertResult, error)

	// GetPushTokensForRoom returns web push tokens for every member of the
	// room except the sender.
	GetPushTokensForRoom(ctx context.Context, room RoomName, exclude Key) ([]string, error)

	// GetMemberKeysForRoom returns the identity keys of the room's members.
	GetMemberKeysForRoom(ctx context.Context, room RoomName) ([]Key, error)

	// GetRecentMessages returns the most recent messages for a room, newest
	// last, capped at limit.
	GetRecentMessages(ctx context.Context, room RoomName, limit int) ([]ChatMessageResponse, error)
}

// PushSender delivers push notifications through an external provider.
// Delivery is best effort; callers treat errors as log-and-continue.
type PushSender interface {
	// SendWebBatch pushes one data payload to a batch of web tokens.
	SendWebBatch(ctx context.Context, tokens []string, data map[string]string) error

	// SendAppSingle pushes a titled notification to a single app token.
	SendAppSingle(ctx context.Context, token, title, body string, data map[string]string) error
}

// Enqueuer is the producer side of the notification queue.
type Enqueuer interface {
	Enqueue(envelope NotificationEnvelope)
}

// Dependencies bundles the injected collaborators the hub needs. All fields
// are required unless noted.
type Dependencies struct {
	Tracking TrackingStore
	Chat     ChatStore
	Queue    Enqueuer
}
