package engine

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var ErrNotPlaying = errors.New("game not in progress")
var ErrStunned = errors.New("input locked while stunned")
var ErrInvalidLetter = errors.New("invalid letter")
var ErrAlreadyGuessed = errors.New("letter already guessed")
var ErrPowerUpUnavailable = errors.New("power-up unavailable")
var ErrUnknownPowerUp = errors.New("unknown power-up")
var ErrNotStunned = errors.New("not stunned")
var ErrBotInactive = errors.New("no active bot opponent")
var ErrWrongStatus = errors.New("command not allowed in current status")
var ErrInvalidMatch = errors.New("invalid match setup")
var ErrStaleGeneration = errors.New("stale session generation")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Status string

const (
	StatusLobby       Status = "LOBBY"
	StatusMatchmaking Status = "MATCHMAKING"
	StatusPlaying     Status = "PLAYING"
	StatusWon         Status = "WON"
	StatusLost        Status = "LOST"
)

type PowerUp string

const (
	PowerUpVowelScan   PowerUp = "vowelScan"
	PowerUpShieldBoost PowerUp = "shieldBoost"
)

type Player struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Avatar  string `json:"avatar"`
	HP      int    `json:"hp"`
	Score   int    `json:"score"`
	IsReady bool   `json:"isReady"`
	IsBot   bool   `json:"isBot,omitempty"`
}

type PowerUps struct {
	VowelScanAvailable   bool `json:"vowelScanAvailable"`
	ShieldBoostAvailable bool `json:"shieldBoostAvailable"`
}

// State is the authoritative record of one match. Players[0] is always the
// local participant once the slice is non-empty.
type State struct {
	Status         Status    `json:"status"`
	Word           string    `json:"word"`
	Category       string    `json:"category"`
	Hint           string    `json:"hint"`
	GuessedLetters []string  `json:"guessedLetters"`
	Players        []Player  `json:"players"`
	WinnerID       string    `json:"winnerId,omitempty"`
	TurnStartTime  time.Time `json:"turnStartTime"`
	TimeLeft       int       `json:"timeLeft"`
	IsStunned      bool      `json:"isStunned"`
	PowerUps       PowerUps  `json:"powerUps"`
	RoomCode       string    `json:"roomCode,omitempty"`
	Generation     uint64    `json:"generation"`
}

type CommandType string

const (
	CmdEnterMatchmaking CommandType = "EnterMatchmaking"
	CmdStartMatch       CommandType = "StartMatch"
	CmdGuess            CommandType = "Guess"
	CmdUsePowerUp       CommandType = "UsePowerUp"
	CmdTick             CommandType = "Tick"
	CmdBotGuess         CommandType = "BotGuess"
	CmdClearStun        CommandType = "ClearStun"
	CmdReset            CommandType = "Reset"
)

/*
	CmdEnterMatchmaking -> EvtMatchmakingStarted
	CmdStartMatch       -> EvtMatchStarted
	CmdGuess            -> EvtLetterRevealed | EvtLetterMissed + EvtDamaged
	CmdUsePowerUp       -> EvtVowelsScanned + EvtDamaged | EvtHealed + EvtStunned
	CmdTick             -> (nothing) | EvtTurnExpired + EvtDamaged
	CmdBotGuess         -> EvtLetterRevealed | EvtLetterMissed + EvtDamaged
	CmdClearStun        -> EvtStunCleared
	CmdReset            -> EvtReset

	Any command that leaves the match decided appends EvtGameWon or EvtGameLost.
*/

// Command is the single input type of the engine. Gen, when non-zero, pins the
// command to the session generation it was scheduled under.
type Command struct {
	Type     CommandType
	Gen      uint64
	Letter   string
	PowerUp  PowerUp
	Player   Player
	Players  []Player
	Word     string
	Category string
	Hint     string
	RoomCode string
	Now      time.Time
}

type EventType string

const (
	EvtMatchmakingStarted EventType = "MatchmakingStarted"
	EvtMatchStarted       EventType = "MatchStarted"
	EvtLetterRevealed     EventType = "LetterRevealed"
	EvtLetterMissed       EventType = "LetterMissed"
	EvtDamaged            EventType = "Damaged"
	EvtHealed             EventType = "Healed"
	EvtVowelsScanned      EventType = "VowelsScanned"
	EvtStunned            EventType = "Stunned"
	EvtStunCleared        EventType = "StunCleared"
	EvtTurnExpired        EventType = "TurnExpired"
	EvtGameWon            EventType = "GameWon"
	EvtGameLost           EventType = "GameLost"
	EvtReset              EventType = "Reset"
)

type WinReason string

const (
	ReasonDecrypted    WinReason = "decrypted"
	ReasonLocalDown    WinReason = "local_down"
	ReasonOpponentDown WinReason = "opponent_down"
)

type Event struct {
	Type     EventType
	PlayerID string
	Letter   string
	Amount   int
	Reason   WinReason
}

func Apply(s State, cmd Command) ([]Event, State, error) {
	if cmd.Gen != 0 && cmd.Gen != s.Generation {
		return nil, s, ErrStaleGeneration
	}

	newState := s.Clone()
	var events []Event
	var err error

	switch cmd.Type {
	case CmdEnterMatchmaking:
		events, err = enterMatchmaking(&newState, cmd)
	case CmdStartMatch:
		events, err = startMatch(&newState, cmd)
	case CmdGuess:
		events, err = guess(&newState, cmd.Letter)
	case CmdUsePowerUp:
		events, err = usePowerUp(&newState, cmd.PowerUp)
	case CmdTick:
		events, err = tick(&newState, cmd.Now)
	case CmdBotGuess:
		events, err = botGuess(&newState, cmd.Letter)
	case CmdClearStun:
		if !newState.IsStunned {
			return nil, s, ErrNotStunned
		}
		newState.IsStunned = false
		events = []Event{{Type: EvtStunCleared}}
	case CmdReset:
		newState = NewEmptyState()
		newState.Generation = s.Generation + 1
		events = []Event{{Type: EvtReset}}
	default:
		return nil, s, ErrUnsupportedCommand
	}

	if err != nil {
		return nil, s, err
	}

	// Win/loss is re-evaluated after every accepted mutation.
	events = append(events, Evaluate(&newState)...)
	return events, newState, nil
}

func enterMatchmaking(s *State, cmd Command) ([]Event, error) {
	if s.Status != StatusLobby {
		return nil, ErrWrongStatus
	}
	if cmd.Player.ID == "" {
		return nil, ErrInvalidMatch
	}

	gen := s.Generation
	*s = NewEmptyState()
	p := cmd.Player
	p.HP = InitialHP
	p.IsReady = true
	s.Status = StatusMatchmaking
	s.Players = []Player{p}
	s.RoomCode = cmd.RoomCode
	s.Generation = gen + 1
	return []Event{{Type: EvtMatchmakingStarted, PlayerID: p.ID}}, nil
}

func startMatch(s *State, cmd Command) ([]Event, error) {
	if s.Status != StatusMatchmaking {
		return nil, ErrWrongStatus
	}
	if len(cmd.Players) != 2 || !ValidWord(cmd.Word) {
		return nil, ErrInvalidMatch
	}

	players := make([]Player, len(cmd.Players))
	for i, p := range cmd.Players {
		if p.ID == "" {
			return nil, ErrInvalidMatch
		}
		p.HP = InitialHP
		players[i] = p
	}

	roomCode := s.RoomCode
	if cmd.RoomCode != "" {
		roomCode = cmd.RoomCode
	}

	gen := s.Generation
	*s = State{
		Status:         StatusPlaying,
		Word:           strings.ToUpper(cmd.Word),
		Category:       cmd.Category,
		Hint:           cmd.Hint,
		GuessedLetters: []string{},
		Players:        players,
		TurnStartTime:  cmd.Now,
		TimeLeft:       TurnDuration,
		IsStunned:      false,
		PowerUps:       PowerUps{VowelScanAvailable: true, ShieldBoostAvailable: true},
		RoomCode:       roomCode,
		Generation:     gen + 1,
	}
	return []Event{{Type: EvtMatchStarted, PlayerID: players[1].ID}}, nil
}

func guess(s *State, raw string) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if s.IsStunned {
		return nil, ErrStunned
	}

	letter, ok := NormalizeLetter(raw)
	if !ok {
		return nil, ErrInvalidLetter
	}
	if hasGuessed(*s, letter) {
		return nil, ErrAlreadyGuessed
	}

	s.GuessedLetters = append(s.GuessedLetters, letter)
	local := &s.Players[LocalIndex]
	if strings.Contains(s.Word, letter) {
		return []Event{{Type: EvtLetterRevealed, PlayerID: local.ID, Letter: letter}}, nil
	}

	events := []Event{{Type: EvtLetterMissed, PlayerID: local.ID, Letter: letter}}
	return append(events, damage(local, WrongGuessCost)...), nil
}

func usePowerUp(s *State, kind PowerUp) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if s.IsStunned {
		return nil, ErrStunned
	}

	local := &s.Players[LocalIndex]

	switch kind {
	case PowerUpVowelScan:
		if !s.PowerUps.VowelScanAvailable {
			return nil, ErrPowerUpUnavailable
		}
		revealed := []string{}
		for _, v := range Vowels {
			if strings.Contains(s.Word, v) && !hasGuessed(*s, v) {
				revealed = append(revealed, v)
			}
		}
		s.GuessedLetters = append(s.GuessedLetters, revealed...)
		s.PowerUps.VowelScanAvailable = false

		events := []Event{{Type: EvtVowelsScanned, PlayerID: local.ID, Letter: strings.Join(revealed, ""), Amount: len(revealed)}}
		return append(events, damage(local, VowelScanCost)...), nil

	case PowerUpShieldBoost:
		if !s.PowerUps.ShieldBoostAvailable {
			return nil, ErrPowerUpUnavailable
		}
		before := local.HP
		local.HP = clampHP(local.HP + ShieldBoostHeal)
		s.TimeLeft = max(1, s.TimeLeft-ShieldBoostTimeCost)
		s.IsStunned = true
		s.PowerUps.ShieldBoostAvailable = false

		return []Event{
			{Type: EvtHealed, PlayerID: local.ID, Amount: local.HP - before},
			{Type: EvtStunned, PlayerID: local.ID},
		}, nil

	default:
		return nil, ErrUnknownPowerUp
	}
}

func tick(s *State, now time.Time) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}

	if s.TimeLeft > 1 {
		s.TimeLeft--
		return nil, nil
	}

	// Expiry wraps the countdown instead of reaching zero.
	s.TimeLeft = TurnDuration
	if !now.IsZero() {
		s.TurnStartTime = now
	}
	local := &s.Players[LocalIndex]
	events := []Event{{Type: EvtTurnExpired, PlayerID: local.ID}}
	return append(events, damage(local, TimeoutCost)...), nil
}

func botGuess(s *State, raw string) ([]Event, error) {
	if s.Status != StatusPlaying {
		return nil, ErrNotPlaying
	}
	if !BotActive(*s) {
		return nil, ErrBotInactive
	}

	letter, ok := NormalizeLetter(raw)
	if !ok {
		return nil, ErrInvalidLetter
	}
	if hasGuessed(*s, letter) {
		return nil, ErrAlreadyGuessed
	}

	s.GuessedLetters = append(s.GuessedLetters, letter)
	bot := &s.Players[OpponentIndex]
	if strings.Contains(s.Word, letter) {
		return []Event{{Type: EvtLetterRevealed, PlayerID: bot.ID, Letter: letter}}, nil
	}

	events := []Event{{Type: EvtLetterMissed, PlayerID: bot.ID, Letter: letter}}
	return append(events, damage(bot, WrongGuessCost)...), nil
}

// Evaluate decides the match if it is over. The checks run in a fixed order
// and only the first match fires: word complete, local down, opponent down.
func Evaluate(s *State) []Event {
	if s.Status != StatusPlaying || len(s.Players) != 2 {
		return nil
	}

	local := s.Players[LocalIndex]
	opponent := s.Players[OpponentIndex]

	switch {
	case WordComplete(*s):
		s.Status = StatusWon
		s.WinnerID = local.ID
		return []Event{{Type: EvtGameWon, PlayerID: local.ID, Reason: ReasonDecrypted}}
	case local.HP <= 0:
		s.Status = StatusLost
		s.WinnerID = opponent.ID
		return []Event{{Type: EvtGameLost, PlayerID: opponent.ID, Reason: ReasonLocalDown}}
	case opponent.HP <= 0:
		s.Status = StatusWon
		s.WinnerID = local.ID
		return []Event{{Type: EvtGameWon, PlayerID: local.ID, Reason: ReasonOpponentDown}}
	}
	return nil
}

func damage(p *Player, amount int) []Event {
	before := p.HP
	p.HP = clampHP(p.HP - amount)
	if p.HP == before {
		return nil
	}
	return []Event{{Type: EvtDamaged, PlayerID: p.ID, Amount: before - p.HP}}
}

func hasGuessed(s State, letter string) bool {
	return slices.Contains(s.GuessedLetters, letter)
}
