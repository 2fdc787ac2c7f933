package httpapi

import (
	"net/http"

	"github.com/DoyleJ11/verbyte-backend/internal/hub"
	"github.com/DoyleJ11/verbyte-backend/internal/stats"
	"github.com/DoyleJ11/verbyte-backend/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func SetupRoutes(h *hub.Hub, store stats.Store, log *zap.Logger, originPatterns []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log, originPatterns))
	r.Get("/stats/{device}", GetStats(store))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", CreateSession(h, log))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", GetSession(h))
			r.Delete("/", DeleteSession(h))
			r.Post("/rooms", CreateRoom(h))
			r.Post("/matchmaking", Matchmaking(h))
			r.Post("/guess", Guess(h))
			r.Post("/powerups", PowerUp(h))
			r.Post("/reset", Reset(h))
			r.Post("/claim", ClaimVictory(h))
		})
	})
	return r
}
