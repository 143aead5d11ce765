// Package live contains the public domain models, interfaces, and dependency
// contracts for the live dispatch hub. It defines the vocabulary shared by the
// real-time core and its external collaborators.
package live

// Key is the authenticated logical user identity. One Key may own several
// concurrent connections (multi-device).
type Key string

// ConnectionID identifies a single physical transport connection. A
// ConnectionID belongs to exactly one Key at a time.
type ConnectionID string

// RoomName names a broadcast group (a chat room or a live tracking room).
// The namespace is distinct from Key.
type RoomName string

// WebNotification is a batched browser push: a set of destination tokens and
// an opaque data map handed to the push provider.
type WebNotification struct {
	Tokens []string          `json:"tokens"`
	Data   map[string]string `json:"data"`
}

// AppNotification is a single-device mobile push.
type AppNotification struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

// NotificationEnvelope pairs the web and app halves of one logical push.
// Either half may be empty; the dispatch worker attempts both independently.
type NotificationEnvelope struct {
	Web WebNotification `json:"web"`
	App AppNotification `json:"app"`
}

// HasWeb reports whether the web half carries any destinations.
func (e NotificationEnvelope) HasWeb() bool { return len(e.Web.Tokens) > 0 }

// HasApp reports whether the app half carries a destination.
func (e NotificationEnvelope) HasApp() bool { return e.App.Token != "" }

// ChatMessage is an inbound chat message as sent by a client.
type ChatMessage struct {
	RoomID     string `json:"roomId"`
	SenderKey  string `json:"senderKey"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	SentAt     int64  `json:"sentAt"`
}

// ChatMessageResponse is the persisted form broadcast back to room members.
type ChatMessageResponse struct {
	RoomID     string `json:"roomId"`
	MessageID  int64  `json:"messageId"`
	SenderKey  string `json:"senderKey"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	SentAt     int64  `json:"sentAt"`
}

// RoomSummary describes a chat room record; broadcast as the NewRoom event
// when a room is created for the first time.
type RoomSummary struct {
	RoomID  string `json:"roomId"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// CoordinateSample is one GPS fix on an active assignment.
type CoordinateSample struct {
	AssignmentID    int64  `json:"assignmentId"`
	TrackID         int64  `json:"trackId"`
	LatLong         string `json:"latLong"`
	IsDeadMile      bool   `json:"isDeadMile"`
	CurrentButtonID int    `json:"currentButtonId"`
}

// DirectionPath is a serialized route polyline for an assignment, with an
// optional estimated time of arrival.
type DirectionPath struct {
	AssignmentID int64  `json:"assignmentId"`
	Path         string `json:"path"`
	ETA          string `json:"eta"`
}
