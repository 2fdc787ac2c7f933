package room

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/DoyleJ11/verbyte-backend/internal/engine"
)

const CodeLength = 6

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := 0; i < CodeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[num.Int64()]
	}
	return string(code), nil
}

// NormalizeCode upper-cases a code taken from a link or user input.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeCharset, code[i]) < 0 {
			return false
		}
	}
	return true
}

// ShareURL embeds code as the room query parameter of base.
func ShareURL(base, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse public url: %w", err)
	}
	q := u.Query()
	q.Set("room", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ShortAddress renders a wallet address as 0x1234...abcd.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

func AvatarURL(seed string) string {
	return "https://api.dicebear.com/7.x/bottts-neutral/svg?seed=" + url.QueryEscape(seed)
}

// LocalPlayer builds the seat-0 participant. Without a wallet the sentinel
// local id is used.
func LocalPlayer(account, avatar string) engine.Player {
	p := engine.Player{ID: account, Name: ShortAddress(account), Avatar: avatar, IsReady: true}
	if account == "" {
		p.ID = engine.LocalPlayerID
		p.Name = "Local_Node"
	}
	if p.Avatar == "" {
		p.Avatar = AvatarURL(p.ID)
	}
	return p
}

func RemotePlayer(account string) engine.Player {
	return engine.Player{
		ID:      account,
		Name:    ShortAddress(account),
		Avatar:  AvatarURL(account),
		IsReady: true,
	}
}

func BotPlayer(seed string) engine.Player {
	return engine.Player{
		ID:      engine.BotPlayerID,
		Name:    "Cipher_Ghost.eth",
		Avatar:  AvatarURL("BaseGhost" + seed),
		IsReady: true,
		IsBot:   true,
	}
}
