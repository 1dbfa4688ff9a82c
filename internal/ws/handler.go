package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
	"github.com/DoyleJ11/arena-lobby/internal/gameconfig"
	"github.com/DoyleJ11/arena-lobby/internal/hub"
	"github.com/DoyleJ11/arena-lobby/internal/lobby"
	"github.com/DoyleJ11/arena-lobby/internal/types"
)

var ErrUnknownMessage = errors.New("unknown message type")

const (
	idleTimeout  = 5 * time.Minute
	writeTimeout = 3 * time.Second
)

func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("lobby", code), zap.String("client", clientID))

		out := make(chan lobby.Snapshot, 8)
		errs := make(chan error, 8)

		if !send(lb, lobby.Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer send(lb, lobby.Leave{ClientID: clientID})

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writer(writeCtx, conn, out, errs, log)

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				report(errs, errors.New("bad json"))
				continue
			}

			cmd, err := ToCommand(cm)
			if err != nil {
				report(errs, err)
				continue
			}

			if !send(lb, lobby.FromClient{ClientID: clientID, Cmd: cmd, Errors: errs}) {
				return
			}
		}
	}
}

func writer(ctx context.Context, conn *websocket.Conn, out <-chan lobby.Snapshot, errs <-chan error, log *zap.Logger) {
	for {
		var msg types.ServerMessage
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-out:
			if !ok {
				// Lobby closed us (shutdown or too slow).
				conn.Close(websocket.StatusGoingAway, "lobby closed")
				return
			}
			msg = ServerMessage(snap)
		case err := <-errs:
			msg = types.ServerMessage{Type: "Error", Error: err.Error()}
		}

		payload, err := json.Marshal(msg)
		if err != nil {
			log.Error("encode server message", zap.Error(err))
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
		if err != nil {
			log.Debug("write failed", zap.Error(err))
			return
		}
	}
}

// ServerMessage renders a lobby snapshot for the wire.
func ServerMessage(snap lobby.Snapshot) types.ServerMessage {
	view := snap.View
	msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, View: &view}
	if snap.Started != nil {
		msg.Type = "Started"
		msg.Payload = snap.Started
	}
	return msg
}

// send delivers msg unless the lobby has already shut down.
func send(lb *lobby.Lobby, msg lobby.Msg) bool {
	select {
	case lb.Inbox() <- msg:
		return true
	case <-lb.Done():
		return false
	}
}

func report(errs chan<- error, err error) {
	select {
	case errs <- err:
	default:
	}
}

// ToCommand maps a client message onto the engine command it asks for.
func ToCommand(m types.ClientMessage) (engine.Command, error) {
	switch m.Type {
	case "toggle":
		return engine.Command{Type: engine.CmdToggleParticipant, ParticipantID: m.ParticipantID}, nil
	case "swap":
		return engine.Command{Type: engine.CmdSwapParticipants, ParticipantID: m.ParticipantID, OtherID: m.OtherID}, nil
	case "random_select":
		return engine.Command{Type: engine.CmdRandomSelect}, nil
	case "set_game":
		return engine.Command{Type: engine.CmdSetGame, Game: engine.Game(m.Game)}, nil
	case "set_mode":
		return engine.Command{Type: engine.CmdSetMode, Mode: engine.Mode(m.Mode)}, nil
	case "set_num_players":
		return engine.Command{Type: engine.CmdSetNumPlayers, Value: m.Value}, nil
	case "set_human_index":
		return engine.Command{Type: engine.CmdSetHumanIndex, Value: m.Value}, nil
	case "set_human_power":
		return engine.Command{Type: engine.CmdSetHumanPower, Label: m.Label}, nil
	case "reroll":
		return engine.Command{Type: engine.CmdRerollRoles}, nil
	case "set_role":
		return engine.Command{Type: engine.CmdSetRole, Seat: m.Seat, Label: m.Label}, nil
	case "set_language":
		return engine.Command{Type: engine.CmdSetLanguage, Label: gameconfig.NormalizeLanguage(m.Label)}, nil
	case "set_max_phases":
		return engine.Command{Type: engine.CmdSetMaxPhases, Value: m.Value}, nil
	case "set_negotiation_rounds":
		return engine.Command{Type: engine.CmdSetNegotiationRounds, Value: m.Value}, nil
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}
