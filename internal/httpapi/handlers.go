package httpapi

import (
	"errors"
	"net/http"

	"github.com/DoyleJ11/verbyte-backend/internal/engine"
	"github.com/DoyleJ11/verbyte-backend/internal/hub"
	"github.com/DoyleJ11/verbyte-backend/internal/ledger"
	"github.com/DoyleJ11/verbyte-backend/internal/room"
	"github.com/DoyleJ11/verbyte-backend/internal/session"
	"github.com/DoyleJ11/verbyte-backend/internal/stats"
	"github.com/DoyleJ11/verbyte-backend/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func CreateSession(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if err := ParseJSONBody(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		ident := hub.Identity{DeviceID: req.DeviceID}
		if req.Account != "" {
			if !common.IsHexAddress(req.Account) {
				ErrorResponse(w, http.StatusBadRequest, "account must be a hex address")
				return
			}
			ident.Account = common.HexToAddress(req.Account).Hex()
		}

		e, err := h.Create(r.Context(), ident)
		if err != nil {
			log.Error("create session failed", zap.Error(err))
			ErrorResponse(w, http.StatusServiceUnavailable, "failed to create session")
			return
		}

		JSONResponse(w, http.StatusCreated, types.CreateSessionResponse{
			SessionID: e.ID,
			PlayerID:  e.Player("").ID,
		})
	}
}

func lookup(h *hub.Hub, w http.ResponseWriter, r *http.Request) (*hub.Entry, bool) {
	e, err := h.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return nil, false
	}
	if e == nil {
		ErrorResponse(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return e, true
}

func GetSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		writeView(w, r, e, http.StatusOK)
	}
}

func DeleteSession(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		if err := h.Remove(r.Context(), e.ID); err != nil {
			ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CreateRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		code, link, err := e.CreateRoom(r.Context())
		if err != nil {
			ErrorResponse(w, statusFor(err), err.Error())
			return
		}
		JSONResponse(w, http.StatusCreated, types.RoomResponse{Code: code, ShareURL: link})
	}
}

func Matchmaking(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		var req types.MatchmakingRequest
		if err := ParseJSONBody(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := e.Matchmake(r.Context(), req.Room, req.Avatar); err != nil {
			ErrorResponse(w, statusFor(err), err.Error())
			return
		}
		writeView(w, r, e, http.StatusAccepted)
	}
}

func Guess(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		var req types.GuessRequest
		if err := ParseJSONBody(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		res, err := e.Guess(r.Context(), req.Letter)
		writeAction(w, res, err)
	}
}

func PowerUp(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		var req types.PowerUpRequest
		if err := ParseJSONBody(r, &req); err != nil {
			ErrorResponse(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		res, err := e.PowerUp(r.Context(), req.Kind)
		writeAction(w, res, err)
	}
}

func Reset(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		if err := e.PlayAgain(r.Context()); err != nil {
			ErrorResponse(w, statusFor(err), err.Error())
			return
		}
		writeView(w, r, e, http.StatusOK)
	}
}

func ClaimVictory(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, ok := lookup(h, w, r)
		if !ok {
			return
		}
		ref, err := e.ClaimVictory(r.Context())
		if err != nil {
			ErrorResponse(w, statusFor(err), err.Error())
			return
		}
		JSONResponse(w, http.StatusCreated, types.ClaimResponse{TxRef: ref})
	}
}

func GetStats(store stats.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := store.Get(r.Context(), chi.URLParam(r, "device"))
		if err != nil {
			ErrorResponse(w, statusFor(err), err.Error())
			return
		}
		JSONResponse(w, http.StatusOK, st)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeView(w http.ResponseWriter, r *http.Request, e *hub.Entry, status int) {
	v, err := e.Session.View(r.Context())
	if err != nil {
		ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	JSONResponse(w, status, v)
}

// writeAction reports engine rejections as ignored input, not as errors.
func writeAction(w http.ResponseWriter, res session.Result, err error) {
	if err != nil {
		ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	resp := types.ActionResponse{Accepted: res.Err == nil, State: res.State}
	if res.Err != nil {
		resp.Reason = res.Err.Error()
	}
	JSONResponse(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrWalletRequired):
		return http.StatusUnauthorized
	case errors.Is(err, room.ErrInvalidCode), errors.Is(err, stats.ErrEmptyKey):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrRoomFull), errors.Is(err, ledger.ErrHostCannotJoin),
		errors.Is(err, engine.ErrWrongStatus), errors.Is(err, engine.ErrStaleGeneration),
		errors.Is(err, room.ErrNotWon), errors.Is(err, room.ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrAccountMismatch):
		return http.StatusForbidden
	case errors.Is(err, session.ErrClosed), errors.Is(err, hub.ErrHubClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
