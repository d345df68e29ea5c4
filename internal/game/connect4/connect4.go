package connect4

import (
	"encoding/json"

	"gamerooms/internal/game"
)

const (
	rows = 6
	cols = 7
)

// Game implements game.Definition for Connect 4.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "connect4",
		Label:      "Connect 4",
		Icon:       "🔴",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// State holds the 6x7 grid, row 0 at the top. Cells are "red", "yellow",
// or "" for empty.
type State struct {
	Board       [rows][cols]string `json:"board"`
	CurrentTurn int                `json:"currentTurn"`
	LastMove    *game.Coord        `json:"lastMove"`
}

func (Game) Init() game.State {
	return &State{}
}

type dropPayload struct {
	Col int `json:"col"`
}

func (Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok || act.Type != "drop" {
		return game.Outcome{}, false
	}
	var dp dropPayload
	if err := json.Unmarshal(act.Payload, &dp); err != nil {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}
	if dp.Col < 0 || dp.Col >= cols {
		return game.Outcome{}, false
	}

	// Gravity: first empty row scanning up from the bottom.
	row := -1
	for r := rows - 1; r >= 0; r-- {
		if s.Board[r][dp.Col] == "" {
			row = r
			break
		}
	}
	if row == -1 {
		return game.Outcome{}, false
	}

	color := "red"
	if seat == 1 {
		color = "yellow"
	}
	s.Board[row][dp.Col] = color
	s.LastMove = &game.Coord{Row: row, Col: dp.Col}

	if cells := winningRun(&s.Board, row, dp.Col); cells != nil {
		return game.Outcome{
			GameOver:   true,
			Winner:     seat,
			WinnerName: m.Name(seat),
			WinCells:   cells,
		}, true
	}
	if topRowFull(&s.Board) {
		return game.Outcome{GameOver: true, Winner: -1}, true
	}

	s.CurrentTurn = 1 - s.CurrentTurn
	return game.Continue(), true
}

// winningRun scans the 4 line directions through the just-placed disc,
// counting contiguous same-color cells both ways.
func winningRun(board *[rows][cols]string, lastR, lastC int) []game.Coord {
	color := board[lastR][lastC]
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		cells := []game.Coord{{Row: lastR, Col: lastC}}
		for i := 1; i < 4; i++ {
			r, c := lastR+d[0]*i, lastC+d[1]*i
			if r < 0 || r >= rows || c < 0 || c >= cols || board[r][c] != color {
				break
			}
			cells = append(cells, game.Coord{Row: r, Col: c})
		}
		for i := 1; i < 4; i++ {
			r, c := lastR-d[0]*i, lastC-d[1]*i
			if r < 0 || r >= rows || c < 0 || c >= cols || board[r][c] != color {
				break
			}
			cells = append(cells, game.Coord{Row: r, Col: c})
		}
		if len(cells) >= 4 {
			return cells
		}
	}
	return nil
}

func topRowFull(board *[rows][cols]string) bool {
	for _, v := range board[0] {
		if v == "" {
			return false
		}
	}
	return true
}
