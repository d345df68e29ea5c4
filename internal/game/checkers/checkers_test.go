package checkers

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

func emptyMatch(t *testing.T) *game.Match {
	t.Helper()
	return &game.Match{State: &State{}, Names: []string{"alice", "bob"}}
}

func move(t *testing.T, m *game.Match, seat, fr, fc, tr, tc int) (game.Outcome, bool) {
	t.Helper()
	var g Game
	payload, _ := json.Marshal(movePayload{
		From: game.Coord{Row: fr, Col: fc},
		To:   game.Coord{Row: tr, Col: tc},
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

	black, red := 0, 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			p := s.Board[r][c]
			if p == nil {
				continue
			}
			if (r+c)%2 != 1 {
				t.Fatalf("piece on light square (%d,%d)", r, c)
			}
			if p.King {
				t.Fatalf("unexpected king at (%d,%d)", r, c)
			}
			switch p.Color {
			case "black":
				black++
				if r < 5 {
					t.Fatalf("black piece outside home rows at (%d,%d)", r, c)
				}
			case "red":
				red++
				if r > 2 {
					t.Fatalf("red piece outside home rows at (%d,%d)", r, c)
				}
			}
		}
	}
	if black != 12 || red != 12 {
		t.Fatalf("expected 12 pieces each, got black=%d red=%d", black, red)
	}
	if s.CurrentTurn != 0 {
		t.Fatalf("expected black (seat 0) to move first, got %d", s.CurrentTurn)
	}
}

func TestSimpleMoveAdvances(t *testing.T) {
	m := newMatch(t)
	mustMove(t, m, 0, 5, 0, 4, 1)

	s := m.State.(*State)
	if s.Board[5][0] != nil {
		t.Fatal("expected origin square vacated")
	}
	p := s.Board[4][1]
	if p == nil || p.Color != "black" {
		t.Fatal("expected black piece at (4,1)")
	}
	if s.CurrentTurn != 1 {
		t.Fatalf("expected turn to pass to red, got %d", s.CurrentTurn)
	}

	mustMove(t, m, 1, 2, 1, 3, 0)
	if s.Board[3][0] == nil || s.Board[3][0].Color != "red" {
		t.Fatal("expected red piece at (3,0)")
	}
}

func TestRejectsIllegalMoves(t *testing.T) {
	m := newMatch(t)
	if _, ok := move(t, m, 1, 2, 1, 3, 0); ok {
		t.Fatal("expected out-of-turn move to be rejected")
	}
	if _, ok := move(t, m, 0, 5, 0, 5, 1); ok {
		t.Fatal("expected non-diagonal move to be rejected")
	}
	if _, ok := move(t, m, 0, 5, 0, 6, 1); ok {
		t.Fatal("expected backward move by a man to be rejected")
	}
	if _, ok := move(t, m, 0, 2, 1, 3, 0); ok {
		t.Fatal("expected moving an opposing piece to be rejected")
	}
	if _, ok := move(t, m, 0, 5, 0, 3, 2); ok {
		t.Fatal("expected a jump with no victim to be rejected")
	}
	if _, ok := move(t, m, 0, 6, 1, 5, 0); ok {
		t.Fatal("expected move onto an occupied square to be rejected")
	}
}

func TestMandatoryCapture(t *testing.T) {
	m := emptyMatch(t)
	s := m.State.(*State)
	s.Board[4][3] = &Piece{Color: "black"}
	s.Board[3][2] = &Piece{Color: "red"}
	s.Board[5][6] = &Piece{Color: "black"}
	s.Board[0][7] = &Piece{Color: "red"}

	// A capture exists at (4,3)x(3,2), so the quiet move elsewhere is
	// rejected.
	if _, ok := move(t, m, 0, 5, 6, 4, 7); ok {
		t.Fatal("expected quiet move to be rejected while a capture exists")
	}

	mustMove(t, m, 0, 4, 3, 2, 1)
	if s.Board[3][2] != nil {
		t.Fatal("expected captured piece removed")
	}
	if s.Board[2][1] == nil || s.Board[2][1].Color != "black" {
		t.Fatal("expected black jumper at (2,1)")
	}
}

func TestCaptureRemovesAndWins(t *testing.T) {
	m := emptyMatch(t)
	s := m.State.(*State)
	s.Board[4][3] = &Piece{Color: "black"}
	s.Board[3][2] = &Piece{Color: "red"}

	out := mustMove(t, m, 0, 4, 3, 2, 1)
	if !out.GameOver {
		t.Fatal("expected game over after red's last piece is captured")
	}
	if out.Winner != 0 {
		t.Fatalf("expected black to win, got %d", out.Winner)
	}
	if out.WinnerName != "alice" {
		t.Fatalf("expected winner name alice, got %q", out.WinnerName)
	}
}

func TestPromotionToKing(t *testing.T) {
	m := emptyMatch(t)
	s := m.State.(*State)
	s.Board[1][2] = &Piece{Color: "black"}
	s.Board[6][5] = &Piece{Color: "red"}

	mustMove(t, m, 0, 1, 2, 0, 1)
	p := s.Board[0][1]
	if p == nil || !p.King {
		t.Fatal("expected black man promoted on row 0")
	}

	mustMove(t, m, 1, 6, 5, 7, 6)
	if s.Board[7][6] == nil || !s.Board[7][6].King {
		t.Fatal("expected red man promoted on row 7")
	}
}

func TestKingMovesBackward(t *testing.T) {
	m := emptyMatch(t)
	s := m.State.(*State)
	s.Board[4][3] = &Piece{Color: "black", King: true}
	s.Board[0][7] = &Piece{Color: "red"}

	mustMove(t, m, 0, 4, 3, 5, 4)
	if s.Board[5][4] == nil || !s.Board[5][4].King {
		t.Fatal("expected king to step backward")
	}
}

func TestKingCapturesBackward(t *testing.T) {
	m := emptyMatch(t)
	s := m.State.(*State)
	s.Board[3][3] = &Piece{Color: "black", King: true}
	s.Board[4][4] = &Piece{Color: "red"}
	s.Board[0][7] = &Piece{Color: "red"}

	mustMove(t, m, 0, 3, 3, 5, 5)
	if s.Board[4][4] != nil {
		t.Fatal("expected backward capture to remove the victim")
	}
	if s.Board[5][5] == nil || s.Board[5][5].Color != "black" {
		t.Fatal("expected king landed at (5,5)")
	}
}
