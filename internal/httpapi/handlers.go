package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
	"github.com/DoyleJ11/arena-lobby/internal/gameconfig"
	"github.com/DoyleJ11/arena-lobby/internal/hub"
	"github.com/DoyleJ11/arena-lobby/internal/lobby"
	"github.com/DoyleJ11/arena-lobby/internal/profile"
	"github.com/DoyleJ11/arena-lobby/internal/startlog"
	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

// Deps is everything the HTTP surface talks to.
type Deps struct {
	Hub        *hub.Hub
	Options    gameconfig.Source
	Profiles   profile.Store
	Consumer   startlog.Consumer
	RosterSize int
	Log        *zap.Logger
}

// startAttempts bounds retries when the lobby changes between the profile
// lookup and the start.
const startAttempts = 3

var errLobbyGone = errors.New("lobby closed")

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createLobbyRequest struct {
	Game string `json:"game,omitempty"`
	Mode string `json:"mode,omitempty"`
}

func CreateLobby(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLobbyRequest
		// An empty body, chunked or not, means no preset.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}

		state := engine.NewEmptyState()
		if d.RosterSize > 0 {
			state.RosterSize = d.RosterSize
		}
		state, err := gameconfig.Seed(r.Context(), d.Options, state)
		if err != nil {
			d.Log.Error("seed lobby options", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load options")
			return
		}
		if req.Game != "" {
			if _, state, err = engine.Apply(state, engine.Command{Type: engine.CmdSetGame, Game: engine.Game(req.Game)}); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		if req.Mode != "" {
			if _, state, err = engine.Apply(state, engine.Command{Type: engine.CmdSetMode, Mode: engine.Mode(req.Mode)}); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			if findLobby(d.Hub, c) == nil {
				code = c
				break
			}
			d.Log.Debug("collision on code, regenerating", zap.String("code", c))
		}

		reply := make(chan *lobby.Lobby, 1)
		d.Hub.Inbox() <- hub.EnsureLobby{Code: code, State: state, Reply: reply}
		if <-reply == nil {
			writeError(w, http.StatusInternalServerError, "failed to create lobby")
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func ListLobbies(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []string, 1)
		d.Hub.Inbox() <- hub.ListLobbies{Reply: reply}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: <-reply})
	}
}

type lobbyResponse struct {
	Code       string      `json:"code"`
	Version    int         `json:"version"`
	NumClients int         `json:"num_clients"`
	Started    bool        `json:"started"`
	View       engine.View `json:"view"`
}

func GetLobby(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		lb := findLobby(d.Hub, code)
		if lb == nil {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}
		view, err := lobbyState(r.Context(), lb)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, lobbyResponse{
			Code:       code,
			Version:    view.Version,
			NumClients: view.NumClients,
			Started:    view.Started,
			View:       engine.Derive(view.State),
		})
	}
}

func DeleteLobby(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if findLobby(d.Hub, code) == nil {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}
		d.Hub.Inbox() <- hub.RemoveLobby{Code: code}
		w.WriteHeader(http.StatusNoContent)
	}
}

type startResponse struct {
	Version int                 `json:"version"`
	Payload *types.StartPayload `json:"payload,omitempty"`
	// Readiness is set when the lobby was not ready to start.
	Readiness *engine.Readiness `json:"readiness,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// StartGame builds the start payload with the selected participants' profile
// overrides and hands it to the configured consumer.
func StartGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		lb := findLobby(d.Hub, code)
		if lb == nil {
			writeError(w, http.StatusNotFound, "lobby not found")
			return
		}

		res, err := start(r.Context(), lb, d.Profiles)
		if err != nil {
			if errors.Is(err, errLobbyGone) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		var notReady *engine.NotReadyError
		switch {
		case errors.As(res.Err, &notReady):
			writeJSON(w, http.StatusConflict, startResponse{
				Version:   res.Version,
				Readiness: &notReady.Readiness,
				Error:     res.Err.Error(),
			})
			return
		case res.Err != nil:
			writeJSON(w, http.StatusConflict, startResponse{Version: res.Version, Error: res.Err.Error()})
			return
		}

		if err := d.Consumer.Consume(r.Context(), code, res.Payload); err != nil {
			d.Log.Error("start hand-off failed", zap.String("lobby", code), zap.Error(err))
			version, abortErr := abort(r.Context(), lb, res.Version)
			if abortErr != nil {
				d.Log.Error("reopen lobby after failed hand-off", zap.String("lobby", code), zap.Error(abortErr))
				version = res.Version
			}
			writeJSON(w, http.StatusBadGateway, startResponse{Version: version, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, startResponse{Version: res.Version, Payload: &res.Payload})
	}
}

func start(ctx context.Context, lb *lobby.Lobby, store profile.Store) (lobby.StartResult, error) {
	var res lobby.StartResult
	for range startAttempts {
		view, err := lobbyState(ctx, lb)
		if err != nil {
			return res, err
		}
		profiles, err := profile.Lookup(ctx, store, view.State.Selection.Ordered())
		if err != nil {
			return res, err
		}
		reply := make(chan lobby.StartResult, 1)
		if err := deliver(ctx, lb, lobby.Start{Version: view.Version, Profiles: profiles, Reply: reply}); err != nil {
			return res, err
		}
		select {
		case res = <-reply:
		case <-lb.Done():
			return res, errLobbyGone
		}
		if !errors.Is(res.Err, lobby.ErrStaleVersion) {
			return res, nil
		}
	}
	return res, nil
}

// abort reopens lb after a failed hand-off and returns its new version.
func abort(ctx context.Context, lb *lobby.Lobby, version int) (int, error) {
	reply := make(chan error, 1)
	if err := deliver(ctx, lb, lobby.Abort{Version: version, Reply: reply}); err != nil {
		return 0, err
	}
	select {
	case err := <-reply:
		if err != nil {
			return 0, err
		}
		return version + 1, nil
	case <-lb.Done():
		return 0, errLobbyGone
	}
}

func Options(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("game")
		if raw == "" {
			web, err := d.Options.Web(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeJSON(w, http.StatusOK, web)
			return
		}
		game, ok := engine.ParseGame(raw)
		if !ok {
			writeError(w, http.StatusNotFound, "options only for avalon/diplomacy")
			return
		}
		opts, err := d.Options.Options(r.Context(), game)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, opts)
	}
}

func GetProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad participant id")
			return
		}
		p, err := d.Profiles.Get(r.Context(), id)
		if errors.Is(err, profile.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func PutProfile(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "bad participant id")
			return
		}
		var p profile.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "bad json")
			return
		}
		p.ParticipantID = id
		if err := d.Profiles.Put(r.Context(), p); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func findLobby(h *hub.Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

func lobbyState(ctx context.Context, lb *lobby.Lobby) (lobby.View, error) {
	reply := make(chan lobby.View, 1)
	if err := deliver(ctx, lb, lobby.GetState{Reply: reply}); err != nil {
		return lobby.View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-lb.Done():
		return lobby.View{}, errLobbyGone
	}
}

func deliver(ctx context.Context, lb *lobby.Lobby, msg lobby.Msg) error {
	select {
	case lb.Inbox() <- msg:
		return nil
	case <-lb.Done():
		return errLobbyGone
	case <-ctx.Done():
		return ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
