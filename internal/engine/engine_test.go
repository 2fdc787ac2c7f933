package engine

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func playingState(word string) State {
	s := NewEmptyState()
	s.Status = StatusPlaying
	s.Word = word
	s.Players = []Player{
		{ID: "0xlocal", Name: "local", HP: InitialHP, IsReady: true},
		{ID: BotPlayerID, Name: "bot", HP: InitialHP, IsReady: true, IsBot: true},
	}
	s.Generation = 3
	return s
}

func mustApply(t *testing.T, s State, cmd Command) ([]Event, State) {
	t.Helper()
	events, next, err := Apply(s, cmd)
	if err != nil {
		t.Fatalf("%s: unexpected err %v", cmd.Type, err)
	}
	return events, next
}

func guessAll(t *testing.T, s State, letters ...string) State {
	t.Helper()
	for _, l := range letters {
		_, next, err := Apply(s, Command{Type: CmdGuess, Letter: l})
		if err != nil && !errors.Is(err, ErrNotPlaying) {
			t.Fatalf("guess %q: unexpected err %v", l, err)
		}
		s = next
	}
	return s
}

func TestGuess_Rejections(t *testing.T) {
	stunned := playingState("TIGER")
	stunned.IsStunned = true

	guessed := playingState("TIGER")
	guessed.GuessedLetters = []string{"T"}

	lobby := NewEmptyState()

	cases := []struct {
		name    string
		setup   State
		letter  string
		wantErr error
	}{
		{name: "not playing", setup: lobby, letter: "T", wantErr: ErrNotPlaying},
		{name: "stunned", setup: stunned, letter: "T", wantErr: ErrStunned},
		{name: "already guessed, other case", setup: guessed, letter: "t", wantErr: ErrAlreadyGuessed},
		{name: "digit", setup: playingState("TIGER"), letter: "7", wantErr: ErrInvalidLetter},
		{name: "two letters", setup: playingState("TIGER"), letter: "TI", wantErr: ErrInvalidLetter},
		{name: "empty", setup: playingState("TIGER"), letter: "", wantErr: ErrInvalidLetter},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, next, err := Apply(tc.setup, Command{Type: CmdGuess, Letter: tc.letter})
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if events != nil {
				t.Fatalf("rejected guess emitted events: %+v", events)
			}
			if !reflect.DeepEqual(next, tc.setup) {
				t.Fatalf("rejected guess changed state:\n got %+v\nwant %+v", next, tc.setup)
			}
		})
	}
}

func TestGuess_CorrectAndWrong(t *testing.T) {
	s := playingState("TIGER")

	events, s := mustApply(t, s, Command{Type: CmdGuess, Letter: "t"})
	if !ContainsEvent(events, EvtLetterRevealed) {
		t.Fatalf("expected EvtLetterRevealed, got %+v", events)
	}
	if s.Players[LocalIndex].HP != InitialHP {
		t.Fatalf("correct guess cost hp: %d", s.Players[LocalIndex].HP)
	}

	events, s = mustApply(t, s, Command{Type: CmdGuess, Letter: "Q"})
	if !ContainsEvent(events, EvtLetterMissed) || !ContainsEvent(events, EvtDamaged) {
		t.Fatalf("expected miss + damage, got %+v", events)
	}
	if s.Players[LocalIndex].HP != InitialHP-1 {
		t.Fatalf("want local hp %d, got %d", InitialHP-1, s.Players[LocalIndex].HP)
	}
	if s.Players[OpponentIndex].HP != InitialHP {
		t.Fatalf("wrong guess touched opponent hp: %d", s.Players[OpponentIndex].HP)
	}
	if !reflect.DeepEqual(s.GuessedLetters, []string{"T", "Q"}) {
		t.Fatalf("guessed letters: %v", s.GuessedLetters)
	}
}

func TestGuess_Idempotent(t *testing.T) {
	once := guessAll(t, playingState("TIGER"), "A")

	_, twice, err := Apply(once, Command{Type: CmdGuess, Letter: "A"})
	if !errors.Is(err, ErrAlreadyGuessed) {
		t.Fatalf("second guess: want ErrAlreadyGuessed, got %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second guess changed state")
	}
	if once.Players[LocalIndex].HP != InitialHP-1 || len(once.GuessedLetters) != 1 {
		t.Fatalf("single wrong guess: %+v", once)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := playingState("TIGER")
	s.GuessedLetters = []string{"T"}
	before := s.Clone()

	_, _ = mustApply(t, s, Command{Type: CmdGuess, Letter: "Q"})
	if !reflect.DeepEqual(s, before) {
		t.Fatalf("Apply mutated its input state")
	}
}

func TestPowerUp_VowelScan(t *testing.T) {
	s := playingState("GIRAFFE")
	s.GuessedLetters = []string{"E"}

	events, s := mustApply(t, s, Command{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan})
	if !ContainsEvent(events, EvtVowelsScanned) {
		t.Fatalf("expected EvtVowelsScanned, got %+v", events)
	}
	if !reflect.DeepEqual(s.GuessedLetters, []string{"E", "A", "I"}) {
		t.Fatalf("guessed letters: %v", s.GuessedLetters)
	}
	if s.Players[LocalIndex].HP != InitialHP-VowelScanCost {
		t.Fatalf("want hp %d, got %d", InitialHP-VowelScanCost, s.Players[LocalIndex].HP)
	}
	if s.PowerUps.VowelScanAvailable {
		t.Fatalf("vowel scan still available")
	}

	// second use is a no-op
	_, again, err := Apply(s, Command{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan})
	if !errors.Is(err, ErrPowerUpUnavailable) {
		t.Fatalf("want ErrPowerUpUnavailable, got %v", err)
	}
	if !reflect.DeepEqual(again, s) {
		t.Fatalf("second vowel scan changed state")
	}
}

func TestPowerUp_VowelScanFloorsHP(t *testing.T) {
	s := playingState("XYZZY")
	s.Players[LocalIndex].HP = 1

	events, s := mustApply(t, s, Command{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan})
	if s.Players[LocalIndex].HP != 0 {
		t.Fatalf("want hp 0, got %d", s.Players[LocalIndex].HP)
	}
	if s.Status != StatusLost || !ContainsEvent(events, EvtGameLost) {
		t.Fatalf("want Lost, got %s (%+v)", s.Status, events)
	}
}

func TestPowerUp_ShieldBoost(t *testing.T) {
	cases := []struct {
		name     string
		hp       int
		timeLeft int
		wantHP   int
		wantTime int
	}{
		{name: "heals and costs time", hp: 3, timeLeft: 45, wantHP: 4, wantTime: 35},
		{name: "hp capped", hp: InitialHP, timeLeft: 45, wantHP: InitialHP, wantTime: 35},
		{name: "time floored at one", hp: 2, timeLeft: 8, wantHP: 3, wantTime: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := playingState("TIGER")
			s.Players[LocalIndex].HP = tc.hp
			s.TimeLeft = tc.timeLeft

			events, next := mustApply(t, s, Command{Type: CmdUsePowerUp, PowerUp: PowerUpShieldBoost})
			if !ContainsEvent(events, EvtStunned) {
				t.Fatalf("expected EvtStunned, got %+v", events)
			}
			if next.Players[LocalIndex].HP != tc.wantHP {
				t.Fatalf("hp: got %d, want %d", next.Players[LocalIndex].HP, tc.wantHP)
			}
			if next.TimeLeft != tc.wantTime {
				t.Fatalf("timeLeft: got %d, want %d", next.TimeLeft, tc.wantTime)
			}
			if !next.IsStunned || next.PowerUps.ShieldBoostAvailable {
				t.Fatalf("want stunned and boost spent, got %+v", next)
			}
		})
	}
}

func TestStun_BlocksInputUntilCleared(t *testing.T) {
	_, s := mustApply(t, playingState("TIGER"), Command{Type: CmdUsePowerUp, PowerUp: PowerUpShieldBoost})

	for _, cmd := range []Command{
		{Type: CmdGuess, Letter: "T"},
		{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan},
		{Type: CmdUsePowerUp, PowerUp: PowerUpShieldBoost},
	} {
		_, next, err := Apply(s, cmd)
		if !errors.Is(err, ErrStunned) {
			t.Fatalf("%s while stunned: want ErrStunned, got %v", cmd.Type, err)
		}
		if !reflect.DeepEqual(next, s) {
			t.Fatalf("%s while stunned changed state", cmd.Type)
		}
	}

	events, s := mustApply(t, s, Command{Type: CmdClearStun})
	if !ContainsEvent(events, EvtStunCleared) || s.IsStunned {
		t.Fatalf("stun not cleared: %+v", s)
	}
	_, _, err := Apply(s, Command{Type: CmdClearStun})
	if !errors.Is(err, ErrNotStunned) {
		t.Fatalf("want ErrNotStunned, got %v", err)
	}
}

func TestPowerUp_UnknownAndInactive(t *testing.T) {
	_, _, err := Apply(playingState("TIGER"), Command{Type: CmdUsePowerUp, PowerUp: "nuke"})
	if !errors.Is(err, ErrUnknownPowerUp) {
		t.Fatalf("want ErrUnknownPowerUp, got %v", err)
	}

	_, _, err = Apply(NewEmptyState(), Command{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan})
	if !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("want ErrNotPlaying, got %v", err)
	}
}

func TestTick(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	s := playingState("TIGER")
	s.TimeLeft = 10
	_, next := mustApply(t, s, Command{Type: CmdTick, Now: now})
	if next.TimeLeft != 9 || next.Players[LocalIndex].HP != InitialHP {
		t.Fatalf("plain tick: %+v", next)
	}

	s.TimeLeft = 1
	events, next := mustApply(t, s, Command{Type: CmdTick, Now: now})
	if next.TimeLeft != TurnDuration {
		t.Fatalf("wrap: want timeLeft %d, got %d", TurnDuration, next.TimeLeft)
	}
	if next.Players[LocalIndex].HP != InitialHP-1 {
		t.Fatalf("wrap: want hp %d, got %d", InitialHP-1, next.Players[LocalIndex].HP)
	}
	if !next.TurnStartTime.Equal(now) || !ContainsEvent(events, EvtTurnExpired) {
		t.Fatalf("wrap: turn not restarted: %+v %+v", next.TurnStartTime, events)
	}

	s.Players[LocalIndex].HP = 0
	s.Status = StatusPlaying
	_, next = mustApply(t, s, Command{Type: CmdTick})
	if next.Players[LocalIndex].HP != 0 {
		t.Fatalf("hp went below zero: %d", next.Players[LocalIndex].HP)
	}

	_, _, err := Apply(NewEmptyState(), Command{Type: CmdTick})
	if !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("want ErrNotPlaying, got %v", err)
	}
}

func TestBotGuess(t *testing.T) {
	s := playingState("TIGER")

	events, next := mustApply(t, s, Command{Type: CmdBotGuess, Letter: "Z"})
	if next.Players[OpponentIndex].HP != InitialHP-1 || next.Players[LocalIndex].HP != InitialHP {
		t.Fatalf("bot miss should only hurt the bot: %+v", next.Players)
	}
	if !ContainsEvent(events, EvtLetterMissed) {
		t.Fatalf("expected EvtLetterMissed, got %+v", events)
	}

	// stun only locks local input
	stunned := playingState("TIGER")
	stunned.IsStunned = true
	_, next = mustApply(t, stunned, Command{Type: CmdBotGuess, Letter: "T"})
	if next.Players[OpponentIndex].HP != InitialHP {
		t.Fatalf("bot hit cost hp")
	}

	room := playingState("TIGER")
	room.RoomCode = "ABC123"
	_, _, err := Apply(room, Command{Type: CmdBotGuess, Letter: "A"})
	if !errors.Is(err, ErrBotInactive) {
		t.Fatalf("room session: want ErrBotInactive, got %v", err)
	}

	human := playingState("TIGER")
	human.Players[OpponentIndex].IsBot = false
	_, _, err = Apply(human, Command{Type: CmdBotGuess, Letter: "A"})
	if !errors.Is(err, ErrBotInactive) {
		t.Fatalf("human opponent: want ErrBotInactive, got %v", err)
	}
}

func TestBotDown_LocalWins(t *testing.T) {
	s := playingState("TIGER")
	s.Players[OpponentIndex].HP = 1

	events, next := mustApply(t, s, Command{Type: CmdBotGuess, Letter: "Q"})
	if next.Status != StatusWon || next.WinnerID != "0xlocal" {
		t.Fatalf("want local win, got %s winner=%s", next.Status, next.WinnerID)
	}
	if len(events) == 0 || events[len(events)-1].Reason != ReasonOpponentDown {
		t.Fatalf("want opponent_down reason, got %+v", events)
	}
}

func TestScenario_WordCompleted(t *testing.T) {
	s := guessAll(t, playingState("TIGER"), "A", "T", "I", "G", "E", "R", "X")
	if s.Status != StatusWon {
		t.Fatalf("want Won, got %s", s.Status)
	}
	if s.WinnerID != "0xlocal" {
		t.Fatalf("want winner 0xlocal, got %s", s.WinnerID)
	}
	// X arrived after the win and must not be recorded
	if s.GuessedLetters[len(s.GuessedLetters)-1] != "R" {
		t.Fatalf("guess accepted after game ended: %v", s.GuessedLetters)
	}
}

func TestScenario_SixWrongGuessesLose(t *testing.T) {
	s := guessAll(t, playingState("TIGER"), "Q", "X", "Z", "J", "V", "K")
	if s.Players[LocalIndex].HP != 0 {
		t.Fatalf("want hp 0, got %d", s.Players[LocalIndex].HP)
	}
	if s.Status != StatusLost || s.WinnerID != BotPlayerID {
		t.Fatalf("want Lost to %s, got %s winner=%s", BotPlayerID, s.Status, s.WinnerID)
	}
}

func TestEvaluate_WordCompleteBeatsZeroHP(t *testing.T) {
	s := playingState("AE")
	s.Players[LocalIndex].HP = 2

	// The scan reveals the whole word and drains the last hp in one update.
	events, next := mustApply(t, s, Command{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan})
	if next.Players[LocalIndex].HP != 0 {
		t.Fatalf("want hp 0, got %d", next.Players[LocalIndex].HP)
	}
	if next.Status != StatusWon || !ContainsEvent(events, EvtGameWon) {
		t.Fatalf("want Won, got %s", next.Status)
	}
}

func TestEndedGame_IsFrozen(t *testing.T) {
	s := guessAll(t, playingState("TIGER"), "Q", "X", "Z", "J", "V", "K")
	for _, cmd := range []Command{
		{Type: CmdGuess, Letter: "T"},
		{Type: CmdUsePowerUp, PowerUp: PowerUpVowelScan},
		{Type: CmdTick},
		{Type: CmdBotGuess, Letter: "T"},
	} {
		_, next, err := Apply(s, cmd)
		if !errors.Is(err, ErrNotPlaying) {
			t.Fatalf("%s after end: want ErrNotPlaying, got %v", cmd.Type, err)
		}
		if !reflect.DeepEqual(next, s) {
			t.Fatalf("%s after end changed state", cmd.Type)
		}
	}
}

func TestLifecycle(t *testing.T) {
	local := Player{ID: "0xlocal", Name: "local"}
	bot := Player{ID: BotPlayerID, Name: "bot", IsBot: true}
	now := time.Now()

	s := NewEmptyState()
	_, _, err := Apply(s, Command{Type: CmdStartMatch, Word: "TIGER", Players: []Player{local, bot}})
	if !errors.Is(err, ErrWrongStatus) {
		t.Fatalf("start from lobby: want ErrWrongStatus, got %v", err)
	}

	_, s = mustApply(t, s, Command{Type: CmdEnterMatchmaking, Player: local, RoomCode: "ABC123"})
	if s.Status != StatusMatchmaking || len(s.Players) != 1 || s.Players[0].ID != local.ID {
		t.Fatalf("matchmaking: %+v", s)
	}
	gen := s.Generation

	_, _, err = Apply(s, Command{Type: CmdStartMatch, Word: "TIGER", Players: []Player{local}})
	if !errors.Is(err, ErrInvalidMatch) {
		t.Fatalf("one player: want ErrInvalidMatch, got %v", err)
	}
	_, _, err = Apply(s, Command{Type: CmdStartMatch, Word: "", Players: []Player{local, bot}})
	if !errors.Is(err, ErrInvalidMatch) {
		t.Fatalf("empty word: want ErrInvalidMatch, got %v", err)
	}

	_, s = mustApply(t, s, Command{Type: CmdStartMatch, Gen: gen, Word: "tiger", Category: "Animals", Players: []Player{local, bot}, Now: now})
	if s.Status != StatusPlaying || s.Word != "TIGER" || s.TimeLeft != TurnDuration || s.RoomCode != "ABC123" {
		t.Fatalf("start: %+v", s)
	}
	for _, p := range s.Players {
		if p.HP != InitialHP {
			t.Fatalf("player %s hp %d", p.ID, p.HP)
		}
	}
	if s.Generation == gen {
		t.Fatalf("generation not bumped on start")
	}

	// a command scheduled under the matchmaking generation is now stale
	_, _, err = Apply(s, Command{Type: CmdTick, Gen: gen})
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("want ErrStaleGeneration, got %v", err)
	}

	started := s.Generation
	_, s = mustApply(t, s, Command{Type: CmdReset})
	if s.Status != StatusLobby || s.Word != "" || len(s.Players) != 0 || s.RoomCode != "" {
		t.Fatalf("reset: %+v", s)
	}
	_, _, err = Apply(s, Command{Type: CmdClearStun, Gen: started})
	if !errors.Is(err, ErrStaleGeneration) {
		t.Fatalf("stun clear after reset: want ErrStaleGeneration, got %v", err)
	}
}

func TestHPStaysInBounds_RandomWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cmds := []CommandType{CmdGuess, CmdUsePowerUp, CmdTick, CmdBotGuess, CmdClearStun}
	powerUps := []PowerUp{PowerUpVowelScan, PowerUpShieldBoost}

	for run := 0; run < 200; run++ {
		s := playingState("JAZZ")
		for step := 0; step < 80; step++ {
			cmd := Command{Type: cmds[rng.Intn(len(cmds))]}
			cmd.Letter = string(Alphabet[rng.Intn(len(Alphabet))])
			cmd.PowerUp = powerUps[rng.Intn(len(powerUps))]
			_, next, _ := Apply(s, cmd)
			s = next
			for _, p := range s.Players {
				if p.HP < 0 || p.HP > InitialHP {
					t.Fatalf("run %d step %d: hp out of bounds: %+v", run, step, p)
				}
			}
		}
	}
}

func TestUnguessed(t *testing.T) {
	s := playingState("TIGER")
	s.GuessedLetters = []string{"A", "Z"}
	got := Unguessed(s)
	if len(got) != 24 || got[0] != "B" || got[len(got)-1] != "Y" {
		t.Fatalf("unexpected unguessed set: %v", got)
	}
}
