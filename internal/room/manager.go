// Package room holds the server's live state: the user and room tables and
// the Manager that schedules every inbound operation, enforces identity,
// turn, and phase invariants, and delegates accepted game actions to the
// registered rule engines.
package room

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"gamerooms/internal/game"
)

// Named failure conditions the transport layer renders as user-visible
// errors. Engine rejects never surface here; they are silent no-ops.
var (
	ErrNotRegistered  = errors.New("not authenticated")
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrRoomNotFound   = errors.New("room not found")
	ErrWrongPassword  = errors.New("wrong password")
	ErrInvalidOptions = errors.New("invalid room options")
)

const (
	maxUsernameLen = 20
	maxPasswordLen = 72 // bcrypt input cap
	defaultAvatar  = "🎮"
	bcryptCost     = 10
)

// User is a connection-scoped identity, independent of room membership.
type User struct {
	ID       string
	Username string
	Avatar   string
	RoomID   string
	send     chan []byte
}

// ResultRecorder receives finished-match outcomes. Live room state is never
// persisted; only terminal results pass through here.
type ResultRecorder interface {
	RecordResult(roomName, gameType, winnerName, reason string) error
}

// Event is the JSON envelope for every outbound message.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func marshalEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(Event{Type: event, Payload: payload})
}

// Manager owns the process-wide user and room tables. A single mutex
// serializes every operation, so handlers run to completion in arrival
// order and no participant ever observes a half-applied mutation. The one
// exception is bcrypt password work, which runs outside the lock with the
// room re-fetched afterwards.
type Manager struct {
	mu       sync.Mutex
	users    map[string]*User
	rooms    map[string]*Room
	registry *game.Registry
	results  ResultRecorder
	log      zerolog.Logger
}

// NewManager creates a manager. results may be nil to skip match-history
// recording.
func NewManager(registry *game.Registry, results ResultRecorder, log zerolog.Logger) *Manager {
	return &Manager{
		users:    make(map[string]*User),
		rooms:    make(map[string]*Room),
		registry: registry,
		results:  results,
		log:      log,
	}
}

// Connect registers a new connection and sends it the available game types.
func (m *Manager) Connect(connID string, send chan []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &User{ID: connID, send: send}
	m.users[connID] = u
	m.emit(u, "gameTypes", m.registry.List())
}

// Disconnect leaves any joined room and removes the connection's user.
func (m *Manager) Disconnect(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(connID)
	delete(m.users, connID)
}

// SetUsername registers an identity for the connection.
func (m *Manager) SetUsername(connID, username, avatar string) error {
	clean := strings.TrimSpace(username)
	if clean == "" {
		return errors.New("username required")
	}
	clean = truncate(clean, maxUsernameLen)
	if avatar == "" {
		avatar = defaultAvatar
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[connID]
	if !ok {
		return ErrNotRegistered
	}
	u.Username = clean
	u.Avatar = avatar
	m.emit(u, "usernameSet", map[string]bool{"success": true})
	return nil
}

// ListRooms sends the public-room snapshot to one connection.
func (m *Manager) ListRooms(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[connID]; ok {
		m.emit(u, "roomsList", m.publicRooms())
	}
}

// CreateOptions are the client-supplied room settings.
type CreateOptions struct {
	Name      string `json:"name"`
	GameType  string `json:"gameType"`
	Level     string `json:"level"`
	IsPrivate bool   `json:"isPrivate"`
	Password  string `json:"password"`
}

// CreateRoom validates the options, seats the creator at index 0, and
// announces the new room to the lobby.
func (m *Manager) CreateRoom(connID string, opts CreateOptions) error {
	def, ok := m.registry.Get(opts.GameType)
	if strings.TrimSpace(opts.Name) == "" || !ok || !validLevel(opts.Level) {
		return ErrInvalidOptions
	}

	// Hash outside the lock; bcrypt is the only slow step in room setup.
	var hash []byte
	if opts.IsPrivate && opts.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(truncate(opts.Password, maxPasswordLen)), bcryptCost)
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.registeredUser(connID)
	if err != nil {
		return err
	}
	if u.RoomID != "" {
		return ErrAlreadyInRoom
	}

	r := newRoom(strings.TrimSpace(opts.Name), opts.Level, def.Info(), opts.IsPrivate, hash)
	r.Players = append(r.Players, mkPlayer(u, 0, false))
	u.RoomID = r.ID
	m.rooms[r.ID] = r

	m.log.Info().Str("room", r.ID).Str("game", r.GameType).Str("user", u.Username).Msg("room created")
	m.emit(u, "roomJoined", joinedPayload{
		Room:        r.summary(),
		Players:     r.Players,
		Spectators:  []*Player{},
		ChatHistory: []ChatMessage{},
		PlayerIndex: 0,
	})
	m.broadcastRooms()
	return nil
}

type joinedPayload struct {
	Room        Summary       `json:"room"`
	Players     []*Player     `json:"players"`
	Spectators  []*Player     `json:"spectators"`
	ChatHistory []ChatMessage `json:"chatHistory"`
	PlayerIndex int           `json:"playerIndex"`
	IsSpectator bool          `json:"isSpectator"`
	GameState   game.State    `json:"gameState"`
	GameStarted bool          `json:"gameStarted"`
}

// JoinRoom seats the joiner if the room is waiting with an open seat, and
// otherwise admits them as a spectator. Private rooms require the password.
func (m *Manager) JoinRoom(connID, roomID, password string) error {
	m.mu.Lock()
	u, err := m.registeredUser(connID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if u.RoomID != "" {
		m.mu.Unlock()
		return ErrAlreadyInRoom
	}
	r, ok := m.rooms[roomID]
	if !ok {
		m.mu.Unlock()
		return ErrRoomNotFound
	}
	private, hash := r.IsPrivate, r.passwordHash
	m.mu.Unlock()

	// Password verification runs unlocked; the room is re-fetched after
	// since it may have emptied out in the meantime.
	if private {
		if password == "" || bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
			return ErrWrongPassword
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	u, err = m.registeredUser(connID)
	if err != nil {
		return err
	}
	if u.RoomID != "" {
		return ErrAlreadyInRoom
	}
	r, ok = m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	playerIndex, isSpectator := -1, false
	var p *Player
	if !r.GameStarted && len(r.Players) < r.MaxPlayers {
		playerIndex = r.freeSeat()
		p = mkPlayer(u, playerIndex, false)
		r.Players = append(r.Players, p)
	} else {
		isSpectator = true
		p = mkPlayer(u, -1, true)
		r.Spectators = append(r.Spectators, p)
	}
	u.RoomID = r.ID

	m.emit(u, "roomJoined", joinedPayload{
		Room:        r.summary(),
		Players:     r.Players,
		Spectators:  r.Spectators,
		ChatHistory: r.ChatHistory,
		PlayerIndex: playerIndex,
		IsSpectator: isSpectator,
		GameState:   r.GameState,
		GameStarted: r.GameStarted,
	})
	m.broadcastExcept(r, connID, "playerJoined", map[string]any{
		"player":     p,
		"players":    r.Players,
		"spectators": r.Spectators,
	})
	m.broadcastRooms()
	return nil
}

// LeaveRoom removes the connection from its room, aborting a game in
// progress when fewer than two seated players remain.
func (m *Manager) LeaveRoom(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveLocked(connID)
}

func (m *Manager) leaveLocked(connID string) {
	u, ok := m.users[connID]
	if !ok || u.RoomID == "" {
		return
	}
	r, ok := m.rooms[u.RoomID]
	u.RoomID = ""
	if !ok {
		return
	}

	r.removeParticipant(u.ID)
	m.broadcastExcept(r, connID, "playerLeft", map[string]any{
		"playerId":   u.ID,
		"players":    r.Players,
		"spectators": r.Spectators,
	})

	if r.GameStarted && len(r.Players) < 2 {
		r.GameStarted = false
		r.GameState = nil
		r.resetReady()
		m.broadcast(r, "gameAborted", map[string]string{"reason": "A player disconnected"})
		m.log.Info().Str("room", r.ID).Msg("game aborted")
	}

	if r.empty() {
		delete(m.rooms, r.ID)
		m.log.Info().Str("room", r.ID).Msg("room destroyed")
	}
	m.broadcastRooms()
}

// SendChat relays a chat message to the sender's room, keeping the bounded
// history. Silently ignored when the sender is not in a room.
func (m *Manager) SendChat(connID, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, r := m.userRoom(connID)
	if r == nil {
		return
	}
	msg := ChatMessage{
		ID:           uuid.NewString(),
		SenderID:     u.ID,
		SenderName:   u.Username,
		SenderAvatar: u.Avatar,
		Content:      truncate(content, maxChatLen),
		Timestamp:    time.Now().UnixMilli(),
	}
	r.appendChat(msg)
	m.broadcast(r, "chatMessage", msg)
}

// ToggleReady flips the player's ready flag and starts the game once at
// least two players are seated and all of them are ready.
func (m *Manager) ToggleReady(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, r := m.userRoom(connID)
	if r == nil || r.GameStarted {
		return
	}
	p := r.findPlayer(u.ID)
	if p == nil {
		return
	}
	p.IsReady = !p.IsReady
	m.broadcast(r, "playerReadyUpdate", map[string]any{"players": r.Players})

	if len(r.Players) >= 2 && r.allReady() {
		m.startGame(r)
	}
}

func (m *Manager) startGame(r *Room) {
	def, ok := m.registry.Get(r.GameType)
	if !ok {
		return
	}
	r.GameState = def.Init()
	r.GameStarted = true
	m.broadcast(r, "gameStarted", map[string]any{
		"gameType":  r.GameType,
		"gameState": r.GameState,
		"players":   r.Players,
	})
	m.log.Info().Str("room", r.ID).Str("game", r.GameType).Msg("game started")
	m.broadcastRooms()
}

type stateUpdate struct {
	GameState game.State `json:"gameState"`
	game.Outcome
}

// Action routes a gameplay action: identity and phase checks here, turn and
// legality checks inside the engine. Rejected actions drop silently; an
// engine panic is contained to this action and reported only to the actor.
func (m *Manager) Action(connID string, act game.Action) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, r := m.userRoom(connID)
	if r == nil || !r.GameStarted {
		return
	}
	p := r.findPlayer(u.ID)
	if p == nil {
		return
	}
	def, ok := m.registry.Get(r.GameType)
	if !ok {
		return
	}

	match := &game.Match{State: r.GameState, Names: r.seatNames()}
	out, accepted, err := m.processGuarded(def, match, p.PlayerIndex, act)
	if err != nil {
		m.log.Error().Err(err).Str("room", r.ID).Str("game", r.GameType).Msg("game engine panic")
		m.emit(u, "error", "An unexpected error occurred.")
		return
	}
	if !accepted {
		return
	}

	m.broadcast(r, "gameStateUpdate", stateUpdate{GameState: r.GameState, Outcome: out})
	if out.GameOver {
		r.GameStarted = false
		r.resetReady()
		m.broadcastRooms()
		m.recordResult(r, out)
	}
}

// processGuarded contains engine faults: a panic in one room's rule engine
// must not take down the process or touch other rooms.
func (m *Manager) processGuarded(def game.Definition, match *game.Match, seat int, act game.Action) (out game.Outcome, accepted bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, accepted = game.Outcome{}, false
			err = fmt.Errorf("panic in ProcessAction: %v", rec)
		}
	}()
	out, accepted = def.ProcessAction(match, seat, act)
	return out, accepted, nil
}

func (m *Manager) recordResult(r *Room, out game.Outcome) {
	if m.results == nil {
		return
	}
	name, gameType := r.Name, r.GameType
	winner, reason := out.WinnerName, out.Reason
	go func() {
		if err := m.results.RecordResult(name, gameType, winner, reason); err != nil {
			m.log.Error().Err(err).Msg("record match result")
		}
	}()
}

// Rematch notifies the rest of the room that this player wants another
// game. Advisory only: both players still have to ready up again.
func (m *Manager) Rematch(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, r := m.userRoom(connID)
	if r == nil || r.GameStarted {
		return
	}
	m.broadcastExcept(r, connID, "rematchOffer", map[string]string{"fromName": u.Username})
}

// Relay forwards a signaling payload to one target connection, stamping the
// sender's id. Returns false when the target is unknown.
func (m *Manager) Relay(fromID, targetID, event string, payload map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.users[targetID]
	if !ok {
		return false
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["fromId"] = fromID
	m.emit(target, event, payload)
	return true
}

// VideoPresence announces a peer joining or leaving the room's video chat.
func (m *Manager) VideoPresence(connID string, joined bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, r := m.userRoom(connID)
	if r == nil {
		return
	}
	if joined {
		m.broadcastExcept(r, connID, "peerJoinedVideo", map[string]string{"peerId": u.ID, "username": u.Username})
	} else {
		m.broadcastExcept(r, connID, "peerLeftVideo", map[string]string{"peerId": u.ID})
	}
}

// Counts reports live room and user totals for the health endpoint.
func (m *Manager) Counts() (rooms, users int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms), len(m.users)
}

// internals

func (m *Manager) registeredUser(connID string) (*User, error) {
	u, ok := m.users[connID]
	if !ok || u.Username == "" {
		return nil, ErrNotRegistered
	}
	return u, nil
}

func (m *Manager) userRoom(connID string) (*User, *Room) {
	u, ok := m.users[connID]
	if !ok || u.RoomID == "" {
		return u, nil
	}
	return u, m.rooms[u.RoomID]
}

func (m *Manager) publicRooms() []Summary {
	out := make([]Summary, 0, len(m.rooms))
	for _, r := range m.rooms {
		if !r.IsPrivate {
			out = append(out, r.summary())
		}
	}
	return out
}

func (m *Manager) broadcastRooms() {
	list := m.publicRooms()
	for _, u := range m.users {
		m.emit(u, "roomsList", list)
	}
}

func (m *Manager) broadcast(r *Room, event string, payload any) {
	m.broadcastExcept(r, "", event, payload)
}

// broadcastExcept fans out to every room participant but exceptID. Delivery
// happens only after the triggering mutation completes, so no participant
// observes a half-applied update.
func (m *Manager) broadcastExcept(r *Room, exceptID, event string, payload any) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		m.log.Error().Err(err).Str("event", event).Msg("marshal broadcast")
		return
	}
	for _, p := range r.Players {
		if p.ID != exceptID {
			m.send(p.ID, data)
		}
	}
	for _, p := range r.Spectators {
		if p.ID != exceptID {
			m.send(p.ID, data)
		}
	}
}

func (m *Manager) emit(u *User, event string, payload any) {
	data, err := marshalEvent(event, payload)
	if err != nil {
		m.log.Error().Err(err).Str("event", event).Msg("marshal event")
		return
	}
	deliver(u.send, data)
}

func (m *Manager) send(userID string, data []byte) {
	if u, ok := m.users[userID]; ok {
		deliver(u.send, data)
	}
}

func deliver(send chan []byte, data []byte) {
	select {
	case send <- data:
	default:
		// drop when the connection's buffer is full
	}
}

func mkPlayer(u *User, playerIndex int, isSpectator bool) *Player {
	return &Player{
		ID:          u.ID,
		Username:    u.Username,
		Avatar:      u.Avatar,
		PlayerIndex: playerIndex,
		IsSpectator: isSpectator,
	}
}
