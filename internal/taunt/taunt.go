package taunt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fallback is shown whenever a taunt cannot be produced.
const Fallback = "SYSTEM_ERROR: COUNTER_MEASURES_ACTIVE."

// Initial is shown before the first taunt of a session arrives.
const Initial = "INITIALIZING_SECURE_LINK..."

const (
	StatusGameStart = "GAME_START"
	StatusGameWon   = "GAME_WON"
	StatusGameLost  = "GAME_LOST"
)

const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
const DefaultModel = "gemini-3-flash-preview"

var ErrMissingAPIKey = errors.New("missing Gemini API key")
var ErrEmptyResponse = errors.New("Gemini responded without text")

type Supplier interface {
	FetchTaunt(ctx context.Context, status string, hp int) (string, error)
}

// Fetch asks s for a taunt and substitutes Fallback on any failure.
func Fetch(ctx context.Context, s Supplier, log *zap.Logger, status string, hp int) string {
	if s == nil {
		return Fallback
	}
	text, err := s.FetchTaunt(ctx, status, hp)
	if err != nil {
		if log != nil {
			log.Warn("taunt unavailable", zap.String("status", status), zap.Error(err))
		}
		return Fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Fallback
	}
	return text
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Gemini struct {
	cfg    GeminiConfig
	client *http.Client
}

func NewGemini(cfg GeminiConfig) *Gemini {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Gemini{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func Prompt(status string, hp int) string {
	return fmt.Sprintf(
		"You are the 'Cipher Ghost', a hostile AI guarding a secure node. Generate a very short (max 10 words), creepy, cyberpunk-style taunt for a player. Status: %s, Player HP: %d/6. Keep it professional but menacing.",
		status, hp,
	)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) FetchTaunt(ctx context.Context, status string, hp int) (string, error) {
	if g.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: Prompt(status, hp)}}}}})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"), url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode Gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
