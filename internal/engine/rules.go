package engine

const (
	InitialHP    = 6
	TurnDuration = 60

	WrongGuessCost      = 1
	TimeoutCost         = 1
	VowelScanCost       = 2
	ShieldBoostHeal     = 1
	ShieldBoostTimeCost = 10
)

const (
	LocalIndex    = 0
	OpponentIndex = 1
)

// Sentinel ids for participants without a wallet.
const (
	LocalPlayerID = "local-player"
	BotPlayerID   = "onchain-challenger"
)

const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var Vowels = []string{"A", "E", "I", "O", "U"}
