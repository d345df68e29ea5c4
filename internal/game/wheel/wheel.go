// Package wheel implements Wheel of Fortune. Players spin for dollar
// values, guess consonants to reveal a hidden phrase (a correct guess keeps
// the turn), buy vowels for a fixed price, and may attempt to solve at any
// time. Solving banks the round score; the higher total wins.
package wheel

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"gamerooms/internal/game"
)

const vowelCost = 250

// Slot is one wedge on the wheel: either a dollar value or a penalty token.
type Slot struct {
	Value   int    `json:"value,omitempty"`
	Special string `json:"special,omitempty"` // "BANKRUPT" | "LOSE_A_TURN"
}

var (
	bankrupt = Slot{Special: "BANKRUPT"}
	loseTurn = Slot{Special: "LOSE_A_TURN"}

	wheelSlots = []Slot{
		{Value: 500}, {Value: 600}, {Value: 700}, {Value: 800},
		{Value: 900}, {Value: 1000}, {Value: 1500}, {Value: 2500},
		{Value: 300}, {Value: 400}, {Value: 850}, {Value: 700},
		{Value: 600}, {Value: 500}, {Value: 800}, {Value: 1200},
		bankrupt, loseTurn, bankrupt, loseTurn,
	}
)

var vowels = map[string]bool{"A": true, "E": true, "I": true, "O": true, "U": true}

type puzzle struct {
	phrase   string
	category string
}

var puzzles = []puzzle{
	{"ELECTRIC SLIDE", "Song & Artist"},
	{"APPLE PIE", "Food & Drink"},
	{"YELLOW BRICK ROAD", "Phrase"},
	{"HAPPY BIRTHDAY TO YOU", "Song & Artist"},
	{"SUNDAY MORNING", "Thing"},
	{"PIZZA DELIVERY", "What Are You Doing?"},
	{"SHOOTING STARS", "Things"},
	{"AROUND THE WORLD", "Phrase"},
	{"FRESH PRINCE OF BEL AIR", "TV Show"},
	{"JURASSIC PARK", "Movie"},
	{"GOLDEN GATE BRIDGE", "Landmark"},
	{"CATCH A FALLING STAR", "Phrase"},
	{"BOARD GAME NIGHT", "Event"},
	{"DANCING IN THE DARK", "Song & Artist"},
	{"MISSION IMPOSSIBLE", "Movie"},
	{"CHOCOLATE CAKE", "Food & Drink"},
	{"ONCE UPON A TIME", "Phrase"},
	{"NIGHT OWL", "Person"},
	{"SILVER LINING", "Phrase"},
	{"BUCKET LIST", "Thing"},
}

// Game implements game.Definition for Wheel of Fortune.
type Game struct {
	rng *rand.Rand
}

// New creates the engine with a time-seeded wheel and puzzle picker.
func New() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (*Game) Info() game.Info {
	return game.Info{
		ID:         "wheeloffortune",
		Label:      "Wheel of Fortune",
		Icon:       "🎡",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// State carries the hidden phrase and both players' banked and round
// scores. Revealed mirrors the phrase: "" for hidden letters, " " for
// spaces, the letter once revealed. Phase is "spin", "act", or "over".
type State struct {
	Phrase        string   `json:"phrase"`
	Category      string   `json:"category"`
	Revealed      []string `json:"revealed"`
	Guessed       []string `json:"guessed"`
	Scores        [2]int   `json:"scores"`
	RoundScores   [2]int   `json:"roundScores"`
	CurrentTurn   int      `json:"currentTurn"`
	Phase         string   `json:"phase"`
	LastSpin      *Slot    `json:"lastSpin"`
	TotalLetters  int      `json:"totalLetters"`
	RevealedCount int      `json:"revealedCount"`
}

func (g *Game) Init() game.State {
	p := puzzles[g.rng.Intn(len(puzzles))]
	return newRound(p)
}

func newRound(p puzzle) *State {
	phrase := strings.ToUpper(p.phrase)
	revealed := make([]string, len(phrase))
	unique := map[rune]bool{}
	for i, r := range phrase {
		if r == ' ' {
			revealed[i] = " "
		} else {
			unique[r] = true
		}
	}
	return &State{
		Phrase:       phrase,
		Category:     p.category,
		Revealed:     revealed,
		Guessed:      []string{},
		Phase:        "spin",
		TotalLetters: len(unique),
	}
}

type letterPayload struct {
	Letter string `json:"letter"`
}

type solvePayload struct {
	Answer string `json:"answer"`
}

func (g *Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok {
		return game.Outcome{}, false
	}
	if s.CurrentTurn != seat {
		return game.Outcome{}, false
	}

	switch act.Type {
	case "spin":
		if s.Phase != "spin" {
			return game.Outcome{}, false
		}
		applySpin(s, seat, wheelSlots[g.rng.Intn(len(wheelSlots))])
		return game.Continue(), true
	case "guess":
		var lp letterPayload
		if err := json.Unmarshal(act.Payload, &lp); err != nil {
			return game.Outcome{}, false
		}
		return applyGuess(s, m, seat, lp.Letter)
	case "buyVowel":
		var lp letterPayload
		if err := json.Unmarshal(act.Payload, &lp); err != nil {
			return game.Outcome{}, false
		}
		return applyBuyVowel(s, m, seat, lp.Letter)
	case "solve":
		var sp solvePayload
		if err := json.Unmarshal(act.Payload, &sp); err != nil {
			return game.Outcome{}, false
		}
		return applySolve(s, m, seat, sp.Answer)
	}
	return game.Outcome{}, false
}

// applySpin resolves a wheel result. Bankrupt zeroes the spinner's round
// earnings and passes the turn; lose-a-turn passes without penalty; a
// dollar value moves to the act phase.
func applySpin(s *State, seat int, slot Slot) {
	sl := slot
	s.LastSpin = &sl
	switch slot.Special {
	case "BANKRUPT":
		s.RoundScores[seat] = 0
		s.Phase = "spin"
		s.CurrentTurn = 1 - s.CurrentTurn
	case "LOSE_A_TURN":
		s.Phase = "spin"
		s.CurrentTurn = 1 - s.CurrentTurn
	default:
		s.Phase = "act"
	}
}

// applyGuess handles a consonant guess from the act phase. A hit credits
// spin-value times occurrences and keeps the turn; a miss passes it.
func applyGuess(s *State, m *game.Match, seat int, letter string) (game.Outcome, bool) {
	if s.Phase != "act" {
		return game.Outcome{}, false
	}
	letter = strings.ToUpper(letter)
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return game.Outcome{}, false
	}
	if vowels[letter] || contains(s.Guessed, letter) {
		return game.Outcome{}, false
	}

	s.Guessed = append(s.Guessed, letter)
	count := revealLetter(s, letter)
	if count == 0 {
		s.Phase = "spin"
		s.CurrentTurn = 1 - s.CurrentTurn
	} else {
		if s.LastSpin != nil {
			s.RoundScores[seat] += count * s.LastSpin.Value
		}
		s.Phase = "spin" // correct guess keeps the turn
	}

	if out, over := checkSolved(s, m, seat); over {
		return out, true
	}
	return game.Continue(), true
}

// applyBuyVowel reveals a vowel for a fixed price, payable from round
// earnings first, then banked score. Allowed from the spin or act phase;
// affordability considers round plus banked funds.
func applyBuyVowel(s *State, m *game.Match, seat int, letter string) (game.Outcome, bool) {
	if s.Phase != "act" && s.Phase != "spin" {
		return game.Outcome{}, false
	}
	letter = strings.ToUpper(letter)
	if !vowels[letter] || contains(s.Guessed, letter) {
		return game.Outcome{}, false
	}
	if s.Scores[seat]+s.RoundScores[seat] < vowelCost {
		return game.Outcome{}, false
	}

	if s.RoundScores[seat] >= vowelCost {
		s.RoundScores[seat] -= vowelCost
	} else {
		s.Scores[seat] -= vowelCost - s.RoundScores[seat]
		s.RoundScores[seat] = 0
	}

	s.Guessed = append(s.Guessed, letter)
	revealLetter(s, letter)
	s.Phase = "spin"

	if out, over := checkSolved(s, m, seat); over {
		return out, true
	}
	return game.Continue(), true
}

// applySolve accepts a full-phrase attempt from any phase. An exact
// normalized match banks the round score and ends the game; a miss clears
// the spin display and passes the turn.
func applySolve(s *State, m *game.Match, seat int, answer string) (game.Outcome, bool) {
	if answer == "" {
		return game.Outcome{}, false
	}
	norm := strings.Join(strings.Fields(strings.ToUpper(answer)), " ")
	if norm != s.Phrase {
		s.Phase = "spin"
		s.CurrentTurn = 1 - s.CurrentTurn
		s.LastSpin = nil
		out := game.Continue()
		out.SolveFailed = true
		return out, true
	}

	s.Scores[seat] += s.RoundScores[seat]
	for i, r := range s.Phrase {
		s.Revealed[i] = string(r)
	}
	s.RevealedCount = countRevealed(s)
	return finish(s, m), true
}

func revealLetter(s *State, letter string) int {
	count := 0
	for i, r := range s.Phrase {
		if string(r) == letter {
			s.Revealed[i] = letter
			count++
		}
	}
	s.RevealedCount = countRevealed(s)
	return count
}

func countRevealed(s *State) int {
	n := 0
	for _, c := range s.Revealed {
		if c != "" && c != " " {
			n++
		}
	}
	return n
}

// checkSolved ends the game once every non-space character is revealed,
// crediting the round score to the seat that just acted.
func checkSolved(s *State, m *game.Match, seat int) (game.Outcome, bool) {
	for _, c := range s.Revealed {
		if c == "" {
			return game.Outcome{}, false
		}
	}
	s.Scores[seat] += s.RoundScores[seat]
	return finish(s, m), true
}

func finish(s *State, m *game.Match) game.Outcome {
	s.Phase = "over"
	winner := -1
	switch {
	case s.Scores[0] > s.Scores[1]:
		winner = 0
	case s.Scores[1] > s.Scores[0]:
		winner = 1
	}
	out := game.Outcome{GameOver: true, Winner: winner, Scores: s.Scores}
	if winner >= 0 {
		out.WinnerName = m.Name(winner)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
