// Package reversi implements Reversi (Othello) on an 8x8 board with the
// standard four-disc start. Seat 0 plays black and moves first.
package reversi

import (
	"encoding/json"

	"gamerooms/internal/game"
)

// Game implements game.Definition for reversi.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "reversi",
		Label:      "Reversi",
		Icon:       "⬤",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// Scores counts discs on the board per color.
type Scores struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// State holds the board ("black"/"white"/"" cells) plus the precomputed
// legal moves for the side to act. Legality depends on having at least one
// flippable line, so ValidMoves is recomputed after every move.
type State struct {
	Board       [8][8]string `json:"board"`
	CurrentTurn int          `json:"currentTurn"`
	Scores      Scores       `json:"scores"`
	ValidMoves  []game.Coord `json:"validMoves"`
}

func (Game) Init() game.State {
	s := &State{Scores: Scores{Black: 2, White: 2}}
	s.Board[3][3] = "white"
	s.Board[3][4] = "black"
	s.Board[4][3] = "black"
	s.Board[4][4] = "white"
	s.ValidMoves = validMoves(&s.Board, "black")
	return s
}

type placePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok || act.Type != "place" {
		return game.Outcome{}, false
	}
	var pp placePayload
	if err := json.Unmarshal(act.Payload, &pp); err != nil {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}

	color := colorFor(seat)
	if !containsMove(s.ValidMoves, pp.Row, pp.Col) {
		return game.Outcome{}, false
	}

	s.Board[pp.Row][pp.Col] = color
	for _, c := range flips(&s.Board, pp.Row, pp.Col, color) {
		s.Board[c.Row][c.Col] = color
	}

	// Turn passes to the opponent; if they are blocked, control goes back
	// to the mover, and if both sides are blocked the game is over.
	s.CurrentTurn = 1 - s.CurrentTurn
	nextMoves := validMoves(&s.Board, colorFor(s.CurrentTurn))
	if len(nextMoves) == 0 {
		s.CurrentTurn = 1 - s.CurrentTurn
		prevMoves := validMoves(&s.Board, color)
		if len(prevMoves) == 0 {
			s.Scores = countScores(&s.Board)
			s.ValidMoves = nil
			winner := -1
			switch {
			case s.Scores.Black > s.Scores.White:
				winner = 0
			case s.Scores.White > s.Scores.Black:
				winner = 1
			}
			out := game.Outcome{GameOver: true, Winner: winner, Scores: s.Scores}
			if winner >= 0 {
				out.WinnerName = m.Name(winner)
			}
			return out, true
		}
		nextMoves = prevMoves
	}

	s.ValidMoves = nextMoves
	s.Scores = countScores(&s.Board)
	return game.Continue(), true
}

func colorFor(seat int) string {
	if seat == 0 {
		return "black"
	}
	return "white"
}

func containsMove(moves []game.Coord, row, col int) bool {
	for _, mv := range moves {
		if mv.Row == row && mv.Col == col {
			return true
		}
	}
	return false
}

var dirs = [8][2]int{
	{0, 1}, {0, -1}, {1, 0}, {-1, 0},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// flips collects every opposing disc that placing color at (row, col) would
// convert: for each direction, the contiguous enemy run that terminates in
// an own-color disc.
func flips(board *[8][8]string, row, col int, color string) []game.Coord {
	enemy := "white"
	if color == "white" {
		enemy = "black"
	}
	var result []game.Coord
	for _, d := range dirs {
		var line []game.Coord
		for i := 1; i < 8; i++ {
			r, c := row+d[0]*i, col+d[1]*i
			if r < 0 || r > 7 || c < 0 || c > 7 {
				break
			}
			if board[r][c] == enemy {
				line = append(line, game.Coord{Row: r, Col: c})
				continue
			}
			if board[r][c] == color {
				result = append(result, line...)
			}
			break
		}
	}
	return result
}

func validMoves(board *[8][8]string, color string) []game.Coord {
	var moves []game.Coord
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if board[r][c] == "" && len(flips(board, r, c, color)) > 0 {
				moves = append(moves, game.Coord{Row: r, Col: c})
			}
		}
	}
	return moves
}

func countScores(board *[8][8]string) Scores {
	var s Scores
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			switch board[r][c] {
			case "black":
				s.Black++
			case "white":
				s.White++
			}
		}
	}
	return s
}
