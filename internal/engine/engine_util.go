package engine

import (
	"slices"
	"strings"
)

func NewEmptyState() State {
	return State{
		Status:         StatusLobby,
		GuessedLetters: []string{},
		Players:        []Player{},
		TimeLeft:       TurnDuration,
		PowerUps:       PowerUps{VowelScanAvailable: true, ShieldBoostAvailable: true},
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	c := s
	c.GuessedLetters = slices.Clone(s.GuessedLetters)
	c.Players = slices.Clone(s.Players)
	if c.GuessedLetters == nil {
		c.GuessedLetters = []string{}
	}
	if c.Players == nil {
		c.Players = []Player{}
	}
	return c
}

func (s State) Local() (Player, bool) {
	if len(s.Players) <= LocalIndex {
		return Player{}, false
	}
	return s.Players[LocalIndex], true
}

func (s State) Opponent() (Player, bool) {
	if len(s.Players) <= OpponentIndex {
		return Player{}, false
	}
	return s.Players[OpponentIndex], true
}

func (s State) Ended() bool {
	return s.Status == StatusWon || s.Status == StatusLost
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

// BotActive reports whether the synthetic opponent may still guess. Room
// sessions never have one.
func BotActive(s State) bool {
	if s.RoomCode != "" {
		return false
	}
	bot, ok := s.Opponent()
	return ok && bot.IsBot && bot.HP > 0
}

func WordComplete(s State) bool {
	if s.Word == "" {
		return false
	}
	for _, r := range s.Word {
		if !slices.Contains(s.GuessedLetters, string(r)) {
			return false
		}
	}
	return true
}

// Unguessed lists the alphabet letters not guessed yet, in alphabet order.
func Unguessed(s State) []string {
	out := make([]string, 0, len(Alphabet))
	for _, r := range Alphabet {
		l := string(r)
		if !slices.Contains(s.GuessedLetters, l) {
			out = append(out, l)
		}
	}
	return out
}

// NormalizeLetter upper-cases a single A-Z character.
func NormalizeLetter(raw string) (string, bool) {
	if len(raw) != 1 {
		return "", false
	}
	l := strings.ToUpper(raw)
	if l[0] < 'A' || l[0] > 'Z' {
		return "", false
	}
	return l, true
}

// ValidWord accepts a non-empty word made only of letters, either case.
func ValidWord(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range strings.ToUpper(word) {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func clampHP(hp int) int {
	return min(max(hp, 0), InitialHP)
}
