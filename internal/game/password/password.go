// Package password implements the classic TV word-guessing game. One player
// sees the secret word and gives one-word clues; the other guesses. Roles
// swap within a round on a wrong guess and across rounds otherwise. Solving
// on fewer clues earns more points; first to the target score wins.
package password

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"gamerooms/internal/game"
)

const (
	targetScore      = 25
	maxCluesPerRound = 8 // after this the round is forfeited for 0 points
)

var words = []string{
	"ELEPHANT", "UMBRELLA", "CHOCOLATE", "TELESCOPE", "LIGHTHOUSE",
	"VOLCANO", "SUITCASE", "CATHEDRAL", "SUBMARINE", "ORCHESTRA",
	"BUTTERFLY", "CARNIVAL", "DETECTIVE", "EVERGREEN", "FISHERMAN",
	"HAMBURGER", "ICEBERG", "JELLYFISH", "KEYBOARD", "LANTERN",
	"MOUNTAIN", "NOTEBOOK", "OCEAN", "PENGUIN", "QUARRY",
	"RAINBOW", "SANDWICH", "TORNADO", "UNIVERSE", "VACATION",
	"WATERFALL", "XYLOPHONE", "YEARBOOK", "ZIPPER", "ASTRONAUT",
	"BLUEPRINT", "COMPASS", "DIAMOND", "ENVELOPE", "FORTRESS",
	"GOVERNOR", "HIGHWAY", "ISLAND", "JUNGLE", "KINGDOM",
	"LIBRARY", "MUSEUM", "NECKLACE", "ORIGAMI", "PORTRAIT",
	"QUICKSAND", "RIDDLE", "SKELETON", "THUNDER", "UPSTREAM",
	"VILLAGE", "WHISPER", "EXPLORER", "YESTERDAY", "CHAMPION",
}

// Game implements game.Definition for Password.
type Game struct {
	rng *rand.Rand
}

// New creates the engine with a time-seeded word picker.
func New() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (*Game) Info() game.Info {
	return game.Info{
		ID:         "password",
		Label:      "Password",
		Icon:       "🔑",
		MinPlayers: 2,
		MaxPlayers: 2,
	}
}

// Clue is one clue/guess exchange within a round.
type Clue struct {
	GiverIndex int    `json:"giverIndex"`
	Clue       string `json:"clue"`
	Guess      string `json:"guess,omitempty"`
	Correct    *bool  `json:"correct"`
}

// State carries the current round plus running scores. ClueGiver and
// Guesser are seat indices; Phase is "give_clue" or "guess".
type State struct {
	SecretWord string   `json:"secretWord"`
	UsedWords  []string `json:"usedWords"`
	Clues      []Clue   `json:"clues"`
	Scores     [2]int   `json:"scores"`
	ClueGiver  int      `json:"clueGiver"`
	Guesser    int      `json:"guesser"`
	Phase      string   `json:"phase"`
	ClueCount  int      `json:"clueCount"`
	LastResult string   `json:"lastResult,omitempty"` // "correct" | "wrong" | "pass"
}

func (g *Game) Init() game.State {
	word := pickWord(g.rng, nil)
	return &State{
		SecretWord: word,
		UsedWords:  []string{word},
		Clues:      []Clue{},
		ClueGiver:  0,
		Guesser:    1,
		Phase:      "give_clue",
	}
}

type cluePayload struct {
	Clue string `json:"clue"`
}

type guessPayload struct {
	Guess string `json:"guess"`
}

func (g *Game) ProcessAction(m *game.Match, seat int, act game.Action) (game.Outcome, bool) {
	s, ok := m.State.(*State)
	if !ok {
		return game.Outcome{}, false
	}

	switch act.Type {
	case "giveClue":
		if s.Phase != "give_clue" || seat != s.ClueGiver {
			return game.Outcome{}, false
		}
		var cp cluePayload
		if err := json.Unmarshal(act.Payload, &cp); err != nil {
			return game.Outcome{}, false
		}
		clue := strings.ToUpper(strings.TrimSpace(cp.Clue))
		if clue == "" || len(strings.Fields(clue)) > 1 {
			return game.Outcome{}, false
		}
		if clue == s.SecretWord {
			return game.Outcome{}, false
		}
		s.Clues = append(s.Clues, Clue{GiverIndex: seat, Clue: clue})
		s.ClueCount++
		s.Phase = "guess"
		return game.Continue(), true

	case "guess":
		if s.Phase != "guess" || seat != s.Guesser {
			return game.Outcome{}, false
		}
		var gp guessPayload
		if err := json.Unmarshal(act.Payload, &gp); err != nil {
			return game.Outcome{}, false
		}
		guess := strings.ToUpper(strings.TrimSpace(gp.Guess))
		if guess == "" {
			return game.Outcome{}, false
		}

		last := &s.Clues[len(s.Clues)-1]
		last.Guess = guess

		if guess == s.SecretWord {
			correct := true
			last.Correct = &correct
			s.Scores[seat] += pointsForClueCount(s.ClueCount)
			s.LastResult = "correct"
			if s.Scores[seat] >= targetScore {
				return game.Outcome{
					GameOver:   true,
					Winner:     seat,
					WinnerName: m.Name(seat),
					Scores:     s.Scores,
				}, true
			}
			g.nextRound(s)
			return game.Continue(), true
		}

		wrong := false
		last.Correct = &wrong
		s.LastResult = "wrong"
		if s.ClueCount >= maxCluesPerRound {
			s.LastResult = "pass"
			g.nextRound(s)
			return game.Continue(), true
		}
		// Roles swap within the same round, same secret word.
		s.ClueGiver, s.Guesser = s.Guesser, s.ClueGiver
		s.Phase = "give_clue"
		return game.Continue(), true
	}

	return game.Outcome{}, false
}

// nextRound swaps roles and draws a fresh secret word, excluding words
// already used this game (falling back to the full pool when exhausted).
func (g *Game) nextRound(s *State) {
	s.ClueGiver, s.Guesser = 1-s.ClueGiver, s.ClueGiver
	word := pickWord(g.rng, s.UsedWords)
	s.UsedWords = append(s.UsedWords, word)
	s.SecretWord = word
	s.Clues = []Clue{}
	s.ClueCount = 0
	s.Phase = "give_clue"
}

// pointsForClueCount awards 10 points for a first-clue solve, decreasing by
// one per extra clue down to a floor of 3.
func pointsForClueCount(n int) int {
	if pts := 10 - n + 1; pts > 3 {
		return pts
	}
	return 3
}

func pickWord(rng *rand.Rand, used []string) string {
	usedSet := make(map[string]bool, len(used))
	for _, w := range used {
		usedSet[w] = true
	}
	available := make([]string, 0, len(words))
	for _, w := range words {
		if !usedSet[w] {
			available = append(available, w)
		}
	}
	pool := available
	if len(pool) == 0 {
		pool = words
	}
	return pool[rng.Intn(len(pool))]
}
