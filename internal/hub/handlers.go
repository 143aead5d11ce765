package hub

import (
	"context"
	"fmt"
	"strconv"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/metrics"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

const recentMessageLimit = 50

// requireNumericRoom validates a chat room identifier. The dispatch database
// keys rooms by bigint, so anything non-numeric can never persist.
func requireNumericRoom(room string) error {
	if _, err := strconv.ParseInt(room, 10, 64); err != nil {
		return validationf("room id %q is not numeric", room)
	}
	return nil
}

// handleSendCurrentCoordinates fans a point-to-point payload out to every
// live connection of the target identity.
func (h *Hub) handleSendCurrentCoordinates(_ context.Context, s *Session, frame Frame) error {
	var who, message string
	if err := decodeArgs(frame, &who, &message); err != nil {
		return validationf("%s", err)
	}
	if who == "" {
		return validationf("target identity is required")
	}

	conns := h.registry.GetConnections(live.Key(who))
	h.broadcaster.SendToConnections(conns, EventReceiveCurrentCoordinates, message)
	return nil
}

// handleSendLiveCoordinates persists a GPS sample and broadcasts it to the
// room's group. A persistence failure aborts the broadcast so clients never
// observe a fix that was not recorded.
func (h *Hub) handleSendLiveCoordinates(ctx context.Context, s *Session, frame Frame) error {
	var (
		room            string
		assignmentID    int64
		trackID         int64
		latLong         string
		isDeadMile      bool
		currentButtonID int
	)
	if err := decodeArgs(frame, &room, &assignmentID, &trackID, &latLong, &isDeadMile, &currentButtonID); err != nil {
		return validationf("%s", err)
	}

	sample := live.CoordinateSample{
		AssignmentID:    assignmentID,
		TrackID:         trackID,
		LatLong:         latLong,
		IsDeadMile:      isDeadMile,
		CurrentButtonID: currentButtonID,
	}
	if err := h.deps.Tracking.SaveCoordinateSample(ctx, sample); err != nil {
		return fmt.Errorf("save coordinate sample for room %s: %w", room, err)
	}

	h.broadcaster.SendToGroup(live.RoomName(room), EventReceiveLiveCoordinates,
		[]any{assignmentID, latLong, isDeadMile, currentButtonID})
	return nil
}

// handleSendGoogleDirectionPath stores or fetches an assignment's direction
// path, then broadcasts the resulting path to the room's group. With a path
// supplied it is persisted (insert or update depending on whether one already
// exists); without one, the previously stored path is fetched.
func (h *Hub) handleSendGoogleDirectionPath(ctx context.Context, s *Session, frame Frame) error {
	var (
		room         string
		assignmentID int64
		path         string
		eta          string
	)
	if err := decodeArgs(frame, &room, &assignmentID, &path, &eta); err != nil {
		return validationf("%s", err)
	}

	result := live.DirectionPath{AssignmentID: assignmentID, Path: path, ETA: eta}
	if path != "" {
		stored, err := h.deps.Tracking.GetStoredPath(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("check stored path for assignment %d: %w", assignmentID, err)
		}
		if err := h.deps.Tracking.SavePath(ctx, result, stored.Path != ""); err != nil {
			return fmt.Errorf("save path for assignment %d: %w", assignmentID, err)
		}
	} else {
		stored, err := h.deps.Tracking.GetStoredPath(ctx, assignmentID)
		if err != nil {
			return fmt.Errorf("fetch stored path for assignment %d: %w", assignmentID, err)
		}
		result = stored
		result.AssignmentID = assignmentID
	}

	h.broadcaster.SendToGroup(live.RoomName(room), EventReceiveGoogleDirectionPath,
		[]any{result.AssignmentID, result.Path, result.ETA})
	return nil
}

// handleSendMessage persists a chat message, best-effort enqueues a push
// envelope, broadcasts to every other member of the room, then echoes the
// event back to the sender. If persistence signals failure nothing is
// broadcast and nothing is enqueued.
func (h *Hub) handleSendMessage(ctx context.Context, s *Session, frame Frame) error {
	var msg live.ChatMessage
	if err := decodeArgs(frame, &msg); err != nil {
		return validationf("%s", err)
	}
	if msg.RoomID == "" {
		s.logger.Debug().Msg("chat message with empty room id, ignoring")
		return nil
	}
	if err := requireNumericRoom(msg.RoomID); err != nil {
		return err
	}
	if msg.SenderKey == "" {
		msg.SenderKey = string(s.Key)
	}

	res, err := h.deps.Chat.UpsertMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("persist chat message for room %s, sender %s: %w", msg.RoomID, s.Key, err)
	}
	if res.Code == live.PersistenceFailed {
		return fmt.Errorf("chat persistence reported failure for room %s, sender %s", msg.RoomID, s.Key)
	}

	response := live.ChatMessageResponse{
		RoomID:     msg.RoomID,
		MessageID:  res.MessageID,
		SenderKey:  msg.SenderKey,
		SenderName: msg.SenderName,
		Text:       msg.Text,
		SentAt:     msg.SentAt,
	}

	// Push delivery is best effort: an enqueue/build failure is logged and
	// must not abort the live broadcast.
	h.enqueuePushForMessage(ctx, s, response)

	room := live.RoomName(msg.RoomID)
	h.broadcaster.SendToGroup(room, EventNewMessage, []any{response}, s.ConnID)
	h.broadcaster.SendToConnection(s.ConnID, EventNewMessage, response)
	return nil
}

// enqueuePushForMessage builds and enqueues the push envelope for a persisted
// chat message. All failures stop here.
func (h *Hub) enqueuePushForMessage(ctx context.Context, s *Session, response live.ChatMessageResponse) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("room", response.RoomID).Msg("push envelope build panicked")
		}
	}()

	tokens, err := h.deps.Chat.GetPushTokensForRoom(ctx, live.RoomName(response.RoomID), live.Key(response.SenderKey))
	if err != nil {
		s.logger.Error().Err(err).Str("room", response.RoomID).Msg("failed to fetch push tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	h.deps.Queue.Enqueue(live.NotificationEnvelope{
		Web: live.WebNotification{
			Tokens: tokens,
			Data: map[string]string{
				"roomId":     response.RoomID,
				"messageId":  strconv.FormatInt(response.MessageID, 10),
				"senderName": response.SenderName,
				"text":       response.Text,
			},
		},
	})
	metrics.NotificationsEnqueued.Inc()
}

// handleJoinRoom adds the identity to the room's logical membership and the
// connection to the room's broadcast group.
func (h *Hub) handleJoinRoom(_ context.Context, s *Session, frame Frame) error {
	var room string
	if err := decodeArgs(frame, &room); err != nil {
		return validationf("%s", err)
	}
	if room == "" {
		return validationf("room is required")
	}

	h.rooms.AddToRoom(live.RoomName(room), s.Key)
	h.broadcaster.joinGroup(live.RoomName(room), s)
	return nil
}

// handleChatJoinRoom joins a chat room, creating its record if absent. On
// first-ever creation the other live members are told about the new room,
// distinct from the generic join. The caller gets the recent backlog.
func (h *Hub) handleChatJoinRoom(ctx context.Context, s *Session, frame Frame) error {
	var room string
	if err := decodeArgs(frame, &room); err != nil {
		return validationf("%s", err)
	}
	if err := requireNumericRoom(room); err != nil {
		return err
	}

	roomName := live.RoomName(room)
	res, err := h.deps.Chat.UpsertRoom(ctx, roomName, s.Key)
	if err != nil {
		return fmt.Errorf("upsert chat room %s: %w", room, err)
	}

	h.rooms.AddToRoom(roomName, s.Key)
	h.broadcaster.joinGroup(roomName, s)

	if res.Created {
		h.notifyNewRoom(ctx, s, roomName)
	}

	// Prime the caller with the recent backlog; failure is non-fatal.
	if backlog, err := h.deps.Chat.GetRecentMessages(ctx, roomName, recentMessageLimit); err != nil {
		s.logger.Error().Err(err).Str("room", room).Msg("failed to fetch recent messages")
	} else {
		h.broadcaster.SendToConnection(s.ConnID, EventReceiveRecentMessages, backlog)
	}
	return nil
}

// notifyNewRoom tells every other live member of a newly created room that it
// exists.
func (h *Hub) notifyNewRoom(ctx context.Context, s *Session, room live.RoomName) {
	members, err := h.deps.Chat.GetMemberKeysForRoom(ctx, room)
	if err != nil {
		s.logger.Error().Err(err).Str("room", string(room)).Msg("failed to fetch room members for new-room notice")
		return
	}

	summary := live.RoomSummary{RoomID: string(room), Created: true}
	for _, member := range members {
		if member == s.Key {
			continue
		}
		conns := h.registry.GetConnections(member)
		h.broadcaster.SendToConnections(conns, EventNewRoom, summary)
	}
}

// handleSendTypingNotification is an ephemeral broadcast with no persistence.
// Nothing here propagates to the caller.
func (h *Hub) handleSendTypingNotification(_ context.Context, s *Session, frame Frame) error {
	var room, userName string
	if err := decodeArgs(frame, &room, &userName); err != nil {
		s.logger.Warn().Err(err).Msg("bad typing notification, ignoring")
		return nil
	}

	h.broadcaster.SendToGroup(live.RoomName(room), EventReceiveTypingNotification,
		[]any{room, userName}, s.ConnID)
	return nil
}

// handleLeaveRoom removes the connection from the room's broadcast group. The
// identity's logical membership ends only when none of its connections remain
// in the group, reconciling the connection-keyed and identity-keyed views.
func (h *Hub) handleLeaveRoom(_ context.Context, s *Session, frame Frame) error {
	var room string
	if err := decodeArgs(frame, &room); err != nil {
		return validationf("%s", err)
	}

	roomName := live.RoomName(room)
	h.broadcaster.leaveGroup(roomName, s.ConnID)
	if !h.broadcaster.groupHasKey(roomName, s.Key) {
		h.rooms.RemoveFromRoom(roomName, s.Key)
	}
	return nil
}
