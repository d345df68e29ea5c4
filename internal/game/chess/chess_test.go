package chess

import (
	"encoding/json"
	"testing"

	"gamerooms/internal/game"
)

func newMatch(t *testing.T) *game.Match {
	t.Helper()
	var g Game
	return &game.Match{State: g.Init(), Names: []string{"alice", "bob"}}
}

func move(t *testing.T, m *game.Match, seat, fr, fc, tr, tc int) (game.Outcome, bool) {
	t.Helper()
	return moveP(t, m, seat, fr, fc, tr, tc, "")
}

func moveP(t *testing.T, m *game.Match, seat, fr, fc, tr, tc int, promo string) (game.Outcome, bool) {
	t.Helper()
	var g Game
	payload, _ := json.Marshal(movePayload{
		From:      game.Coord{Row: fr, Col: fc},
		To:        game.Coord{Row: tr, Col: tc},
		Promotion: promo,
	})
	return g.ProcessAction(m, seat, game.Action{Type: "move", Payload: payload})
}

func mustMove(t *testing.T, m *game.Match, seat, fr, fc, tr, tc int) game.Outcome {
	t.Helper()
	out, ok := move(t, m, seat, fr, fc, tr, tc)
	if !ok {
		t.Fatalf("move seat=%d (%d,%d)->(%d,%d) rejected", seat, fr, fc, tr, tc)
	}
	return out
}

func TestInitialSetup(t *testing.T) {
	m := newMatch(t)
	s := m.State.(*State)

	if s.CurrentTurn != 0 {
		t.Fatalf("expected white (seat 0) to move first, got %d", s.CurrentTurn)
	}
	if p := s.Board[7][4]; p == nil || p.Type != "K" || p.Color != "white" {
		t.Fatal("expected white king on e1")
	}
	if p := s.Board[0][4]; p == nil || p.Type != "K" || p.Color != "black" {
		t.Fatal("expected black king on e8")
	}
	for c := 0; c < 8; c++ {
		if p := s.Board[6][c]; p == nil || p.Type != "P" || p.Color != "white" {
			t.Fatalf("expected white pawn at (6,%d)", c)
		}
		if p := s.Board[1][c]; p == nil || p.Type != "P" || p.Color != "black" {
			t.Fatalf("expected black pawn at (1,%d)", c)
		}
	}
}

func TestPawnDoubleStepSetsEnPassantTarget(t *testing.T) {
	m := newMatch(t)
	mustMove(t, m, 0, 6, 4, 4, 4)

	s := m.State.(*State)
	if s.EnPassant == nil || s.EnPassant.Row != 5 || s.EnPassant.Col != 4 {
		t.Fatalf("expected en passant target (5,4), got %v", s.EnPassant)
	}
	if len(s.Moves) != 1 || s.Moves[0].Piece != "P" || s.Moves[0].Color != "white" {
		t.Fatalf("expected pawn move recorded, got %v", s.Moves)
	}

	// Any reply that is not a double pawn push clears the target.
	mustMove(t, m, 1, 0, 1, 2, 2)
	if s.EnPassant != nil {
		t.Fatalf("expected en passant target cleared, got %v", s.EnPassant)
	}
}

func TestRejectsIllegalMoves(t *testing.T) {
	m := newMatch(t)
	if _, ok := move(t, m, 1, 1, 4, 3, 4); ok {
		t.Fatal("expected out-of-turn move to be rejected")
	}
	if _, ok := move(t, m, 0, 4, 4, 3, 4); ok {
		t.Fatal("expected moving from an empty square to be rejected")
	}
	if _, ok := move(t, m, 0, 1, 4, 2, 4); ok {
		t.Fatal("expected moving an opposing piece to be rejected")
	}
	if _, ok := move(t, m, 0, 7, 1, 5, 1); ok {
		t.Fatal("expected non-knight geometry to be rejected")
	}
	if _, ok := move(t, m, 0, 7, 0, 5, 0); ok {
		t.Fatal("expected rook sliding through a pawn to be rejected")
	}
}

func TestEnPassantCapture(t *testing.T) {
	m := newMatch(t)
	mustMove(t, m, 0, 6, 4, 4, 4) // e4
	mustMove(t, m, 1, 1, 0, 2, 0) // a6
	mustMove(t, m, 0, 4, 4, 3, 4) // e5
	mustMove(t, m, 1, 1, 3, 3, 3) // d5

	s := m.State.(*State)
	if s.EnPassant == nil || s.EnPassant.Row != 2 || s.EnPassant.Col != 3 {
		t.Fatalf("expected en passant target (2,3), got %v", s.EnPassant)
	}

	mustMove(t, m, 0, 3, 4, 2, 3) // exd6 en passant
	if s.Board[3][3] != nil {
		t.Fatal("expected the passed pawn removed from (3,3)")
	}
	if p := s.Board[2][3]; p == nil || p.Type != "P" || p.Color != "white" {
		t.Fatal("expected white pawn landed on (2,3)")
	}
	if len(s.Captured.Black) != 1 || s.Captured.Black[0].Type != "P" {
		t.Fatalf("expected one captured black pawn, got %v", s.Captured.Black)
	}
}

func TestEnPassantExpiresAfterOneMove(t *testing.T) {
	m := newMatch(t)
	mustMove(t, m, 0, 6, 4, 4, 4) // e4
	mustMove(t, m, 1, 1, 0, 2, 0) // a6
	mustMove(t, m, 0, 4, 4, 3, 4) // e5
	mustMove(t, m, 1, 1, 3, 3, 3) // d5
	mustMove(t, m, 0, 6, 0, 5, 0) // a3, declining the capture
	mustMove(t, m, 1, 2, 0, 3, 0) // a5

	// The window is gone; the diagonal to the empty square is illegal now.
	if _, ok := move(t, m, 0, 3, 4, 2, 3); ok {
		t.Fatal("expected expired en passant capture to be rejected")
	}
}

func TestKingsideCastling(t *testing.T) {
	s := &State{}
	s.Board[7][4] = &Piece{Type: "K", Color: "white"}
	s.Board[7][7] = &Piece{Type: "R", Color: "white"}
	s.Board[0][4] = &Piece{Type: "K", Color: "black"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	mustMove(t, m, 0, 7, 4, 7, 6)
	if p := s.Board[7][6]; p == nil || p.Type != "K" {
		t.Fatal("expected king on g1")
	}
	if p := s.Board[7][5]; p == nil || p.Type != "R" {
		t.Fatal("expected rook relocated to f1")
	}
	if s.Board[7][7] != nil {
		t.Fatal("expected h1 vacated")
	}
	if !s.Castling.WKing {
		t.Fatal("expected white king flagged as moved")
	}
}

func TestQueensideCastling(t *testing.T) {
	s := &State{}
	s.Board[7][4] = &Piece{Type: "K", Color: "white"}
	s.Board[7][0] = &Piece{Type: "R", Color: "white"}
	s.Board[0][4] = &Piece{Type: "K", Color: "black"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	mustMove(t, m, 0, 7, 4, 7, 2)
	if p := s.Board[7][2]; p == nil || p.Type != "K" {
		t.Fatal("expected king on c1")
	}
	if p := s.Board[7][3]; p == nil || p.Type != "R" {
		t.Fatal("expected rook relocated to d1")
	}
}

func TestCastlingBlockedByAttackedTransit(t *testing.T) {
	s := &State{}
	s.Board[7][4] = &Piece{Type: "K", Color: "white"}
	s.Board[7][7] = &Piece{Type: "R", Color: "white"}
	s.Board[0][4] = &Piece{Type: "K", Color: "black"}
	s.Board[0][5] = &Piece{Type: "R", Color: "black"} // covers f1
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	if _, ok := move(t, m, 0, 7, 4, 7, 6); ok {
		t.Fatal("expected castling through an attacked square to be rejected")
	}
}

func TestCastlingForbiddenAfterRookMoved(t *testing.T) {
	s := &State{}
	s.Board[7][4] = &Piece{Type: "K", Color: "white"}
	s.Board[7][7] = &Piece{Type: "R", Color: "white"}
	s.Board[0][4] = &Piece{Type: "K", Color: "black"}
	s.Castling.WRookH = true
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	if _, ok := move(t, m, 0, 7, 4, 7, 6); ok {
		t.Fatal("expected castling with a moved rook to be rejected")
	}
}

func TestPinnedPieceCannotMove(t *testing.T) {
	s := &State{}
	s.Board[7][4] = &Piece{Type: "K", Color: "white"}
	s.Board[6][4] = &Piece{Type: "N", Color: "white"} // shields the king
	s.Board[0][4] = &Piece{Type: "R", Color: "black"}
	s.Board[0][0] = &Piece{Type: "K", Color: "black"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	if _, ok := move(t, m, 0, 6, 4, 4, 3); ok {
		t.Fatal("expected move exposing own king to be rejected")
	}
	// The king itself may step off the file.
	mustMove(t, m, 0, 7, 4, 7, 3)
}

func TestScholarsMate(t *testing.T) {
	m := newMatch(t)
	mustMove(t, m, 0, 6, 4, 4, 4) // e4
	mustMove(t, m, 1, 1, 4, 3, 4) // e5
	mustMove(t, m, 0, 7, 5, 4, 2) // Bc4
	mustMove(t, m, 1, 0, 1, 2, 2) // Nc6
	mustMove(t, m, 0, 7, 3, 3, 7) // Qh5
	mustMove(t, m, 1, 0, 6, 2, 5) // Nf6
	out := mustMove(t, m, 0, 3, 7, 1, 5) // Qxf7#

	if !out.GameOver {
		t.Fatal("expected game over on checkmate")
	}
	if out.Winner != 0 || out.WinnerName != "alice" {
		t.Fatalf("expected white to win, got winner=%d name=%q", out.Winner, out.WinnerName)
	}
	if out.Reason != "checkmate" {
		t.Fatalf("expected reason checkmate, got %q", out.Reason)
	}
	s := m.State.(*State)
	if !s.Check || !s.Checkmate {
		t.Fatalf("expected check and checkmate flags set, got check=%v mate=%v", s.Check, s.Checkmate)
	}
	if len(s.Captured.Black) != 1 || s.Captured.Black[0].Type != "P" {
		t.Fatalf("expected the f7 pawn in the captured list, got %v", s.Captured.Black)
	}
}

func TestStalemateIsADraw(t *testing.T) {
	s := &State{}
	s.Board[0][0] = &Piece{Type: "K", Color: "black"}
	s.Board[2][4] = &Piece{Type: "Q", Color: "white"}
	s.Board[7][7] = &Piece{Type: "K", Color: "white"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	// Qb6 boxes the black king in without giving check.
	out := mustMove(t, m, 0, 2, 4, 2, 1)
	if !out.GameOver {
		t.Fatal("expected game over on stalemate")
	}
	if out.Winner != -1 {
		t.Fatalf("expected draw winner -1, got %d", out.Winner)
	}
	if out.Reason != "stalemate" {
		t.Fatalf("expected reason stalemate, got %q", out.Reason)
	}
	if !s.Stalemate || s.Check {
		t.Fatalf("expected stalemate without check, got stalemate=%v check=%v", s.Stalemate, s.Check)
	}
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	s := &State{}
	s.Board[1][0] = &Piece{Type: "P", Color: "white"}
	s.Board[7][7] = &Piece{Type: "K", Color: "white"}
	s.Board[0][7] = &Piece{Type: "K", Color: "black"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	mustMove(t, m, 0, 1, 0, 0, 0)
	if p := s.Board[0][0]; p == nil || p.Type != "Q" {
		t.Fatalf("expected promotion to queen, got %v", s.Board[0][0])
	}
}

func TestPromotionToChosenPiece(t *testing.T) {
	s := &State{}
	s.Board[1][0] = &Piece{Type: "P", Color: "white"}
	s.Board[7][7] = &Piece{Type: "K", Color: "white"}
	s.Board[0][7] = &Piece{Type: "K", Color: "black"}
	m := &game.Match{State: s, Names: []string{"alice", "bob"}}

	if _, ok := moveP(t, m, 0, 1, 0, 0, 0, "N"); !ok {
		t.Fatal("expected promotion move accepted")
	}
	if p := s.Board[0][0]; p == nil || p.Type != "N" {
		t.Fatalf("expected promotion to knight, got %v", s.Board[0][0])
	}
}
