package cmd

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// NewFakeStores creates in-memory collaborator fakes for local development
// runs without a database or push provider.
func NewFakeStores(logger zerolog.Logger) (live.TrackingStore, live.ChatStore, live.PushSender) {
	return &fakeTrackingStore{paths: make(map[int64]live.DirectionPath), logger: logger},
		&fakeChatStore{rooms: make(map[string]bool), logger: logger},
		&fakePushSender{logger: logger}
}

type fakeTrackingStore struct {
	mu     sync.Mutex
	paths  map[int64]live.DirectionPath
	logger zerolog.Logger
}

func (f *fakeTrackingStore) SaveCoordinateSample(_ context.Context, sample live.CoordinateSample) error {
	f.logger.Debug().Int64("assignment", sample.AssignmentID).Msg("fake: coordinate sample saved")
	return nil
}

func (f *fakeTrackingStore) GetStoredPath(_ context.Context, assignmentID int64) (live.DirectionPath, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if path, ok := f.paths[assignmentID]; ok {
		return path, nil
	}
	return live.DirectionPath{AssignmentID: assignmentID}, nil
}

func (f *fakeTrackingStore) SavePath(_ context.Context, path live.DirectionPath, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[path.AssignmentID] = path
	return nil
}

type fakeChatStore struct {
	mu      sync.Mutex
	rooms   map[string]bool
	nextID  int64
	history []live.ChatMessageResponse
	logger  zerolog.Logger
}

func (f *fakeChatStore) UpsertMessage(_ context.Context, msg live.ChatMessage) (live.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.history = append(f.history, live.ChatMessageResponse{
		RoomID:     msg.RoomID,
		MessageID:  f.nextID,
		SenderKey:  msg.SenderKey,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		SentAt:     msg.SentAt,
	})
	return live.UpsertResult{Code: 1, MessageID: f.nextID}, nil
}

func (f *fakeChatStore) UpsertRoom(_ context.Context, room live.RoomName, _ live.Key) (live.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	created := !f.rooms[string(room)]
	f.rooms[string(room)] = true
	return live.UpsertResult{Code: 1, Created: created}, nil
}

func (f *fakeChatStore) GetPushTokensForRoom(context.Context, live.RoomName, live.Key) ([]string, error) {
	return nil, nil
}

func (f *fakeChatStore) GetMemberKeysForRoom(context.Context, live.RoomName) ([]live.Key, error) {
	return nil, nil
}

func (f *fakeChatStore) GetRecentMessages(_ context.Context, room live.RoomName, limit int) ([]live.ChatMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []live.ChatMessageResponse
	for _, msg := range f.history {
		if msg.RoomID == string(room) {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakePushSender struct {
	logger zerolog.Logger
}

func (f *fakePushSender) SendWebBatch(_ context.Context, tokens []string, _ map[string]string) error {
	f.logger.Info().Int("tokens", len(tokens)).Msg("fake: web push sent")
	return nil
}

func (f *fakePushSender) SendAppSingle(_ context.Context, token, title, _ string, _ map[string]string) error {
	f.logger.Info().Str("token", token).Str("title", title).Msg("fake: app push sent")
	return nil
}
