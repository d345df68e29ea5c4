package room

import (
	"time"

	"github.com/google/uuid"

	"gamerooms/internal/game"
)

const (
	chatHistoryCap = 200
	maxChatLen     = 500
	maxRoomName    = 40
)

// Levels are the cosmetic difficulty tags a room may carry.
var Levels = []string{"beginner", "intermediate", "advanced"}

// Player is a room membership record. PlayerIndex is the seat (0 or 1), or
// -1 for spectators. A seat is stable for the player's lifetime in the
// room; a vacated seat goes to the next joiner.
type Player struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar"`
	PlayerIndex int    `json:"playerIndex"`
	IsSpectator bool   `json:"isSpectator"`
	IsReady     bool   `json:"isReady"`
}

// ChatMessage is one entry in a room's bounded chat history.
type ChatMessage struct {
	ID           string `json:"id"`
	SenderID     string `json:"senderId"`
	SenderName   string `json:"senderName"`
	SenderAvatar string `json:"senderAvatar"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"`
}

// Room aggregates one match's social and game state: seated players,
// spectators, chat, the current game state, and lifecycle flags. Rooms are
// created by a create request and destroyed when the last participant
// leaves. All access is serialized by the Manager's lock.
type Room struct {
	ID           string
	Name         string
	GameType     string
	Level        string
	MaxPlayers   int
	IsPrivate    bool
	passwordHash []byte
	Players      []*Player
	Spectators   []*Player
	ChatHistory  []ChatMessage
	GameState    game.State
	GameStarted  bool
	CreatedAt    time.Time

	info game.Info
}

func newRoom(name, level string, info game.Info, isPrivate bool, passwordHash []byte) *Room {
	return &Room{
		ID:           uuid.NewString(),
		Name:         truncate(name, maxRoomName),
		GameType:     info.ID,
		Level:        level,
		MaxPlayers:   info.MaxPlayers,
		IsPrivate:    isPrivate,
		passwordHash: passwordHash,
		ChatHistory:  []ChatMessage{},
		CreatedAt:    time.Now(),
		info:         info,
	}
}

// Summary is the lobby-browsing view of a room.
type Summary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	GameType       string `json:"gameType"`
	GameLabel      string `json:"gameLabel"`
	GameIcon       string `json:"gameIcon"`
	Level          string `json:"level"`
	MaxPlayers     int    `json:"maxPlayers"`
	IsPrivate      bool   `json:"isPrivate"`
	PlayerCount    int    `json:"playerCount"`
	SpectatorCount int    `json:"spectatorCount"`
	GameStarted    bool   `json:"gameStarted"`
	CreatedAt      int64  `json:"createdAt"`
}

func (r *Room) summary() Summary {
	return Summary{
		ID:             r.ID,
		Name:           r.Name,
		GameType:       r.GameType,
		GameLabel:      r.info.Label,
		GameIcon:       r.info.Icon,
		Level:          r.Level,
		MaxPlayers:     r.MaxPlayers,
		IsPrivate:      r.IsPrivate,
		PlayerCount:    len(r.Players),
		SpectatorCount: len(r.Spectators),
		GameStarted:    r.GameStarted,
		CreatedAt:      r.CreatedAt.UnixMilli(),
	}
}

func (r *Room) appendChat(msg ChatMessage) {
	r.ChatHistory = append(r.ChatHistory, msg)
	if len(r.ChatHistory) > chatHistoryCap {
		r.ChatHistory = r.ChatHistory[1:]
	}
}

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) removeParticipant(id string) {
	r.Players = removeByID(r.Players, id)
	r.Spectators = removeByID(r.Spectators, id)
}

func removeByID(list []*Player, id string) []*Player {
	out := list[:0]
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// freeSeat returns the lowest unoccupied seat index, or -1 when every seat
// is taken. Seats vacated by leavers are reused before new ones open up.
func (r *Room) freeSeat() int {
	taken := make(map[int]bool, len(r.Players))
	for _, p := range r.Players {
		taken[p.PlayerIndex] = true
	}
	for i := 0; i < r.MaxPlayers; i++ {
		if !taken[i] {
			return i
		}
	}
	return -1
}

func (r *Room) empty() bool {
	return len(r.Players) == 0 && len(r.Spectators) == 0
}

func (r *Room) allReady() bool {
	for _, p := range r.Players {
		if !p.IsReady {
			return false
		}
	}
	return true
}

func (r *Room) resetReady() {
	for _, p := range r.Players {
		p.IsReady = false
	}
}

// seatNames returns usernames ordered by seat index, sized to the highest
// occupied seat.
func (r *Room) seatNames() []string {
	maxSeat := -1
	for _, p := range r.Players {
		if p.PlayerIndex > maxSeat {
			maxSeat = p.PlayerIndex
		}
	}
	names := make([]string, maxSeat+1)
	for _, p := range r.Players {
		if p.PlayerIndex >= 0 {
			names[p.PlayerIndex] = p.Username
		}
	}
	return names
}

func validLevel(level string) bool {
	for _, l := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
