// Package chess implements a full legality-checking chess engine: per-piece
// move generation, simulate-and-check filtering, castling, en passant,
// promotion, and checkmate/stalemate detection. Seat 0 plays white.
package chess

import (
	"encoding/json"

	"gamerooms/internal/game"
)

// Game implements game.Definition for chess.
type Game struct{}

func (Game) Info() game.Info {
	return game.Info{
		ID:         "chess",
		Label:      "Chess",
		Icon:       "♟️",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// Piece types use the standard single-letter codes: P, R, N, B, Q, K.
type Piece struct {
	Type  string `json:"type"`
	Color string `json:"color"` // "white" or "black"
}

// Board is an 8x8 grid, row 0 = black's back rank, row 7 = white's.
type Board [8][8]*Piece

// MoveRecord is one entry in the move history.
type MoveRecord struct {
	From     game.Coord `json:"from"`
	To       game.Coord `json:"to"`
	Piece    string     `json:"piece"`
	Color    string     `json:"color"`
	Captured string     `json:"captured,omitempty"`
}

// Captured holds taken pieces keyed by the captured piece's own color.
type Captured struct {
	White []Piece `json:"white"`
	Black []Piece `json:"black"`
}

// Castling tracks which king/rook pieces have moved off their original
// squares. A set flag permanently forecloses that castling option.
type Castling struct {
	WKing  bool `json:"wKing"`
	BKing  bool `json:"bKing"`
	WRookA bool `json:"wRookA"`
	WRookH bool `json:"wRookH"`
	BRookA bool `json:"bRookA"`
	BRookH bool `json:"bRookH"`
}

// State is the full chess position.
type State struct {
	Board       Board        `json:"board"`
	CurrentTurn int          `json:"currentTurn"`
	Moves       []MoveRecord `json:"moves"`
	Captured    Captured     `json:"capturedPieces"`
	Check       bool         `json:"check"`
	Checkmate   bool         `json:"checkmate"`
	Stalemate   bool         `json:"stalemate"`
	EnPassant   *game.Coord  `json:"enPassant"` // capture square, lives for exactly one move
	Castling    Castling     `json:"castling"`
}

func (Game) Init() game.State {
	s := &State{Moves: []MoveRecord{}}
	back := [8]string{"R", "N", "B", "Q", "K", "B", "N", "R"}
	for i := 0; i < 8; i++ {
		s.Board[0][i] = &Piece{Type: back[i], Color: "black"}
		s.Board[1][i] = &Piece{Type: "P", Color: "black"}
		s.Board[6][i] = &Piece{Type: "P", Color: "white"}
		s.Board[7][i] = &Piece{Type: back[i], Color: "white"}
	}
	return s
}

type movePayload struct {
	From      game.Coord `json:"from"`
	To        game.Coord `json:"to"`
	Promotion string     `json:"promotion,omitempty"`
}

func (Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok || act.Type != "move" {
		return game.Outcome{}, false
	}
	var mv movePayload
	if err := json.Unmarshal(act.Payload, &mv); err != nil {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}
	if !inBounds(mv.From.Row, mv.From.Col) || !inBounds(mv.To.Row, mv.To.Col) {
		return game.Outcome{}, false
	}

	color := colorFor(seat)
	piece := s.Board[mv.From.Row][mv.From.Col]
	if piece == nil || piece.Color != color {
		return game.Outcome{}, false
	}
	if !containsCoord(legalMoves(s, mv.From.Row, mv.From.Col), mv.To) {
		return game.Outcome{}, false
	}

	applyMove(s, piece, mv)

	next := colorFor(s.CurrentTurn)
	s.Check = inCheck(&s.Board, next)
	s.Checkmate = s.Check && !hasLegalMove(s, next)
	s.Stalemate = !s.Check && !hasLegalMove(s, next)

	if s.Checkmate {
		return game.Outcome{
			GameOver:   true,
			Winner:     seat,
			WinnerName: m.Name(seat),
			Reason:     "checkmate",
		}, true
	}
	if s.Stalemate {
		return game.Outcome{GameOver: true, Winner: -1, Reason: "stalemate"}, true
	}
	return game.Continue(), true
}

// applyMove performs all side effects of a validated move, in order:
// capture removal (including en passant's off-target removal), en-passant
// target update, promotion, castling rook relocation, piece relocation,
// castling-rights updates, history append, turn flip.
func applyMove(s *State, piece *Piece, mv movePayload) {
	from, to := mv.From, mv.To
	color := piece.Color

	captured := s.Board[to.Row][to.Col]
	if captured != nil {
		s.recordCapture(*captured)
	}

	if piece.Type == "P" && s.EnPassant != nil && to.Row == s.EnPassant.Row && to.Col == s.EnPassant.Col {
		cr := to.Row + pawnDir(opposite(color))
		if victim := s.Board[cr][to.Col]; victim != nil {
			s.recordCapture(*victim)
			s.Board[cr][to.Col] = nil
		}
	}

	if piece.Type == "P" && abs(to.Row-from.Row) == 2 {
		s.EnPassant = &game.Coord{Row: (from.Row + to.Row) / 2, Col: from.Col}
	} else {
		s.EnPassant = nil
	}

	if piece.Type == "P" && (to.Row == 0 || to.Row == 7) {
		piece.Type = promotionType(mv.Promotion)
	}

	if piece.Type == "K" && abs(to.Col-from.Col) == 2 {
		if to.Col > from.Col {
			s.Board[from.Row][5] = s.Board[from.Row][7]
			s.Board[from.Row][7] = nil
		} else {
			s.Board[from.Row][3] = s.Board[from.Row][0]
			s.Board[from.Row][0] = nil
		}
	}

	s.Board[to.Row][to.Col] = piece
	s.Board[from.Row][from.Col] = nil

	if piece.Type == "K" {
		if color == "white" {
			s.Castling.WKing = true
		} else {
			s.Castling.BKing = true
		}
	}
	if piece.Type == "R" {
		switch from.Col {
		case 0:
			if color == "white" {
				s.Castling.WRookA = true
			} else {
				s.Castling.BRookA = true
			}
		case 7:
			if color == "white" {
				s.Castling.WRookH = true
			} else {
				s.Castling.BRookH = true
			}
		}
	}

	rec := MoveRecord{From: from, To: to, Piece: piece.Type, Color: color}
	if captured != nil {
		rec.Captured = captured.Type
	}
	s.Moves = append(s.Moves, rec)
	s.CurrentTurn = 1 - s.CurrentTurn
}

func (s *State) recordCapture(p Piece) {
	if p.Color == "white" {
		s.Captured.White = append(s.Captured.White, p)
	} else {
		s.Captured.Black = append(s.Captured.Black, p)
	}
}

// promotionType validates the requested promotion, defaulting to queen.
func promotionType(p string) string {
	switch p {
	case "Q", "R", "B", "N":
		return p
	}
	return "Q"
}

// legalMoves generates every legal destination for the piece at (row, col):
// pseudo-legal geometry filtered by simulating each move and discarding any
// that leaves the mover's own king in check.
func legalMoves(s *State, row, col int) []game.Coord {
	piece := s.Board[row][col]
	if piece == nil {
		return nil
	}
	var moves []game.Coord
	switch piece.Type {
	case "P":
		moves = pawnMoves(s, row, col, piece.Color)
	case "R":
		moves = slide(&s.Board, row, col, piece.Color, rookDirs)
	case "N":
		moves = knightMoves(&s.Board, row, col, piece.Color)
	case "B":
		moves = slide(&s.Board, row, col, piece.Color, bishopDirs)
	case "Q":
		moves = append(slide(&s.Board, row, col, piece.Color, rookDirs),
			slide(&s.Board, row, col, piece.Color, bishopDirs)...)
	case "K":
		moves = kingMoves(s, row, col, piece.Color)
	}

	legal := moves[:0]
	for _, mv := range moves {
		nb := s.Board.clone()
		nb[mv.Row][mv.Col] = nb[row][col]
		nb[row][col] = nil
		if piece.Type == "P" && s.EnPassant != nil && mv.Row == s.EnPassant.Row && mv.Col == s.EnPassant.Col {
			nb[mv.Row+pawnDir(opposite(piece.Color))][mv.Col] = nil
		}
		if !inCheck(&nb, piece.Color) {
			legal = append(legal, mv)
		}
	}
	return legal
}

var (
	rookDirs   = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightHops = [8][2]int{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

func pawnDir(color string) int {
	if color == "white" {
		return -1
	}
	return 1
}

func pawnMoves(s *State, row, col int, color string) []game.Coord {
	var moves []game.Coord
	dir := pawnDir(color)
	startRow := 1
	if color == "white" {
		startRow = 6
	}
	if inBounds(row+dir, col) && s.Board[row+dir][col] == nil {
		moves = append(moves, game.Coord{Row: row + dir, Col: col})
		if row == startRow && s.Board[row+2*dir][col] == nil {
			moves = append(moves, game.Coord{Row: row + 2*dir, Col: col})
		}
	}
	for _, dc := range [2]int{-1, 1} {
		r, c := row+dir, col+dc
		if !inBounds(r, c) {
			continue
		}
		if t := s.Board[r][c]; t != nil && t.Color != color {
			moves = append(moves, game.Coord{Row: r, Col: c})
		}
		if s.EnPassant != nil && s.EnPassant.Row == r && s.EnPassant.Col == c {
			moves = append(moves, game.Coord{Row: r, Col: c})
		}
	}
	return moves
}

func slide(b *Board, row, col int, color string, dirs [4][2]int) []game.Coord {
	var moves []game.Coord
	for _, d := range dirs {
		for i := 1; i < 8; i++ {
			r, c := row+d[0]*i, col+d[1]*i
			if !inBounds(r, c) {
				break
			}
			if t := b[r][c]; t != nil {
				if t.Color != color {
					moves = append(moves, game.Coord{Row: r, Col: c})
				}
				break
			}
			moves = append(moves, game.Coord{Row: r, Col: c})
		}
	}
	return moves
}

func knightMoves(b *Board, row, col int, color string) []game.Coord {
	var moves []game.Coord
	for _, d := range knightHops {
		r, c := row+d[0], col+d[1]
		if inBounds(r, c) && (b[r][c] == nil || b[r][c].Color != color) {
			moves = append(moves, game.Coord{Row: r, Col: c})
		}
	}
	return moves
}

// kingMoves returns the adjacent squares plus castling candidates. Castling
// requires an unmoved king and rook, empty squares between them, a king not
// currently in check, and neither transit square attacked (verified by
// simulating the king on each).
func kingMoves(s *State, row, col int, color string) []game.Coord {
	var moves []game.Coord
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if inBounds(r, c) && (s.Board[r][c] == nil || s.Board[r][c].Color != color) {
				moves = append(moves, game.Coord{Row: r, Col: c})
			}
		}
	}

	kingMoved := s.Castling.BKing
	rookHMoved := s.Castling.BRookH
	rookAMoved := s.Castling.BRookA
	if color == "white" {
		kingMoved = s.Castling.WKing
		rookHMoved = s.Castling.WRookH
		rookAMoved = s.Castling.WRookA
	}
	if kingMoved || inCheck(&s.Board, color) {
		return moves
	}

	if !rookHMoved && col+2 < 8 && s.Board[row][col+1] == nil && s.Board[row][col+2] == nil {
		if castleTransitSafe(&s.Board, row, col, color, 1) {
			moves = append(moves, game.Coord{Row: row, Col: col + 2})
		}
	}
	if !rookAMoved && col-3 >= 0 && s.Board[row][col-1] == nil && s.Board[row][col-2] == nil && s.Board[row][col-3] == nil {
		if castleTransitSafe(&s.Board, row, col, color, -1) {
			moves = append(moves, game.Coord{Row: row, Col: col - 2})
		}
	}
	return moves
}

func castleTransitSafe(b *Board, row, col int, color string, step int) bool {
	for _, off := range [2]int{1, 2} {
		nb := b.clone()
		nb[row][col+step*off] = nb[row][col]
		nb[row][col] = nil
		if inCheck(&nb, color) {
			return false
		}
	}
	return true
}

// pawnAttacks is the diagonal-forward capture pattern, distinct from the
// pawn's move pattern.
func pawnAttacks(row, col int, color string) []game.Coord {
	dir := pawnDir(color)
	var atk []game.Coord
	for _, dc := range [2]int{-1, 1} {
		if inBounds(row+dir, col+dc) {
			atk = append(atk, game.Coord{Row: row + dir, Col: col + dc})
		}
	}
	return atk
}

// inCheck scans every enemy piece's attack set for overlap with the king's
// square.
func inCheck(b *Board, color string) bool {
	kr, kc := -1, -1
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := b[r][c]; p != nil && p.Type == "K" && p.Color == color {
				kr, kc = r, c
			}
		}
	}
	if kr == -1 {
		return false
	}
	enemy := opposite(color)
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := b[r][c]
			if p == nil || p.Color != enemy {
				continue
			}
			var atk []game.Coord
			switch p.Type {
			case "P":
				atk = pawnAttacks(r, c, enemy)
			case "R":
				atk = slide(b, r, c, enemy, rookDirs)
			case "N":
				atk = knightMoves(b, r, c, enemy)
			case "B":
				atk = slide(b, r, c, enemy, bishopDirs)
			case "Q":
				atk = append(slide(b, r, c, enemy, rookDirs), slide(b, r, c, enemy, bishopDirs)...)
			case "K":
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						if dr != 0 || dc != 0 {
							atk = append(atk, game.Coord{Row: r + dr, Col: c + dc})
						}
					}
				}
			}
			for _, a := range atk {
				if a.Row == kr && a.Col == kc {
					return true
				}
			}
		}
	}
	return false
}

func hasLegalMove(s *State, color string) bool {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := s.Board[r][c]; p != nil && p.Color == color && len(legalMoves(s, r, c)) > 0 {
				return true
			}
		}
	}
	return false
}

func (b *Board) clone() Board {
	var nb Board
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if b[r][c] != nil {
				p := *b[r][c]
				nb[r][c] = &p
			}
		}
	}
	return nb
}

func colorFor(seat int) string {
	if seat == 0 {
		return "white"
	}
	return "black"
}

func opposite(color string) string {
	if color == "white" {
		return "black"
	}
	return "white"
}

func containsCoord(moves []game.Coord, to game.Coord) bool {
	for _, mv := range moves {
		if mv == to {
			return true
		}
	}
	return false
}

func inBounds(row, col int) bool {
	return row >= 0 && row < 8 && col >= 0 && col < 8
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
