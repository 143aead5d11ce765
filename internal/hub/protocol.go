// Package hub implements the session protocol handler: it owns the WebSocket
// transport, an inbound operation registry keyed by target name, and the
// outbound broadcast primitive over single connections, identities, and room
// groups.
package hub

import (
	"encoding/json"
	"fmt"
)

// Inbound operation targets.
const (
	OpSendCurrentCoordinates  = "SendCurrentCoordinates"
	OpSendLiveCoordinates     = "SendLiveCoordinates"
	OpSendGoogleDirectionPath = "SendGoogleDirectionPath"
	OpSendMessage             = "SendMessage"
	OpJoinRoom                = "JoinRoom"
	OpChatJoinRoom            = "ChatJoinRoom"
	OpSendTypingNotification  = "SendTypingNotification"
	OpLeaveRoom               = "LeaveRoom"
)

// Outbound event targets.
const (
	EventReceiveCurrentCoordinates  = "ReceiveCurrentCoordinates"
	EventReceiveLiveCoordinates     = "ReceiveLiveCoordinates"
	EventReceiveGoogleDirectionPath = "ReceiveGoogleDirectionPath"
	EventNewMessage                 = "NewMessage"
	EventNewRoom                    = "NewRoom"
	EventReceiveTypingNotification  = "ReceiveTypingNotification"
	EventReceiveRecentMessages      = "ReceiveRecentMessages"
	EventError                      = "Error"
)

// Frame is one protocol message in either direction: a target name plus
// positional JSON arguments.
type Frame struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// ErrorPayload is the structured failure response sent to a caller whose
// operation was rejected.
type ErrorPayload struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

// encodeFrame marshals an outbound frame with the given argument values.
func encodeFrame(target string, args ...any) ([]byte, error) {
	raw := make([]json.RawMessage, 0, len(args))
	for _, arg := range args {
		b, err := json.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal argument for %s: %w", target, err)
		}
		raw = append(raw, b)
	}
	return json.Marshal(Frame{Target: target, Arguments: raw})
}

// decodeArgs unmarshals the frame's positional arguments into the given
// destinations. Missing trailing arguments leave their destinations at zero
// value; optional parameters rely on this.
func decodeArgs(frame Frame, dests ...any) error {
	if len(frame.Arguments) > len(dests) {
		return fmt.Errorf("%s: too many arguments: got %d, want at most %d",
			frame.Target, len(frame.Arguments), len(dests))
	}
	for i, raw := range frame.Arguments {
		if err := json.Unmarshal(raw, dests[i]); err != nil {
			return fmt.Errorf("%s: bad argument %d: %w", frame.Target, i, err)
		}
	}
	return nil
}
