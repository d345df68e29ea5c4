package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"nhooyr.io/websocket"

	"gamerooms/internal/game"
	"gamerooms/internal/room"
)

// WSMessage is the JSON envelope for inbound WebSocket messages.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type setUsernamePayload struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type joinRoomPayload struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type chatPayload struct {
	Content string `json:"content"`
}

type relayPayload struct {
	TargetID string `json:"targetId"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin policy is enforced by the CORS layer
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket accept")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	connID := uuid.NewString()
	send := make(chan []byte, 64)

	s.manager.Connect(connID, send)
	// Disconnect removes the user from the manager tables before the send
	// channel is closed, so nothing can write to a closed channel.
	defer close(send)
	defer s.manager.Disconnect(connID)

	// Writer goroutine: push manager broadcasts to the socket.
	go func() {
		for msg := range send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	limiter := newEventWindow()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		if !limiter.allow() {
			sendEvent(send, "error", "Too many requests — slow down!")
			continue
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendEvent(send, "error", "invalid message")
			continue
		}
		s.dispatch(connID, send, msg)
	}

	s.log.Debug().Str("conn", connID).Msg("connection closed")
}

// dispatch maps one inbound event to a manager operation. Named manager
// failures come back as error events; engine rejects stay silent.
func (s *Server) dispatch(connID string, send chan []byte, msg WSMessage) {
	switch msg.Type {
	case "setUsername":
		var p setUsernamePayload
		json.Unmarshal(msg.Payload, &p)
		if err := s.manager.SetUsername(connID, p.Username, p.Avatar); err != nil {
			sendEvent(send, "error", err.Error())
		}

	case "getRooms":
		s.manager.ListRooms(connID)

	case "createRoom":
		var opts room.CreateOptions
		if err := json.Unmarshal(msg.Payload, &opts); err != nil {
			sendEvent(send, "error", "invalid room options")
			return
		}
		if err := s.manager.CreateRoom(connID, opts); err != nil {
			sendEvent(send, "error", err.Error())
		}

	case "joinRoom":
		var p joinRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			sendEvent(send, "error", "invalid join request")
			return
		}
		if err := s.manager.JoinRoom(connID, p.RoomID, p.Password); err != nil {
			sendEvent(send, "error", err.Error())
		}

	case "leaveRoom":
		s.manager.LeaveRoom(connID)

	case "sendMessage":
		var p chatPayload
		json.Unmarshal(msg.Payload, &p)
		s.manager.SendChat(connID, p.Content)

	case "playerReady":
		s.manager.ToggleReady(connID)

	case "gameAction":
		var act game.Action
		if err := json.Unmarshal(msg.Payload, &act); err != nil {
			return
		}
		s.manager.Action(connID, act)

	case "rematch":
		s.manager.Rematch(connID)

	case "webrtc-offer", "webrtc-answer", "webrtc-ice-candidate":
		s.relay(connID, msg)

	case "videoJoined":
		s.manager.VideoPresence(connID, true)

	case "videoLeft":
		s.manager.VideoPresence(connID, false)

	default:
		sendEvent(send, "error", "unknown message type: "+msg.Type)
	}
}

// relay forwards WebRTC signaling verbatim to the target connection.
func (s *Server) relay(connID string, msg WSMessage) {
	var p relayPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil || p.TargetID == "" {
		return
	}
	var body map[string]any
	if err := json.Unmarshal(msg.Payload, &body); err != nil {
		return
	}
	delete(body, "targetId")
	s.manager.Relay(connID, p.TargetID, msg.Type, body)
}

func sendEvent(send chan []byte, event string, payload any) {
	data, err := json.Marshal(room.Event{Type: event, Payload: payload})
	if err != nil {
		return
	}
	select {
	case send <- data:
	default:
	}
}
