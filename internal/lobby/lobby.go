package lobby

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

var (
	ErrAlreadyStarted = errors.New("lobby already started")
	ErrStaleVersion   = errors.New("lobby changed since the requested version")
	ErrNotStarted     = errors.New("lobby not started")
)

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	ClientID string
	Cmd      engine.Command
	// Errors, when set, receives the rejection if the command is refused.
	Errors chan<- error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Start asks the lobby to build its start payload. Version pins the state the
// caller fetched profiles for; a negative Version skips the check.
type Start struct {
	Version  int
	Profiles engine.Profiles
	Reply    chan StartResult
}

func (Start) isLobbyMsg() {}

// Abort reopens a started lobby whose payload could not be handed off.
// Version must be the one the Start reply carried.
type Abort struct {
	Version int
	Reply   chan error
}

func (Abort) isLobbyMsg() {}

type StartResult struct {
	Version int
	Payload types.StartPayload
	Err     error
}

type Snapshot struct {
	Version int
	View    engine.View
	Started *types.StartPayload
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Started    bool
}

type Lobby struct {
	code    string
	inbox   chan Msg
	state   engine.State
	version int
	started *types.StartPayload
	clients map[string]chan Snapshot
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewLobby(parent context.Context, code string, initial engine.State, log *zap.Logger) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		log:     log.With(zap.String("lobby", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				l.log.Debug("client joined", zap.String("client", msg.ClientID), zap.Int("clients", len(l.clients)))
				msg.Outbox <- l.snapshot()

			case Leave:
				delete(l.clients, msg.ClientID)

			case FromClient:
				l.apply(msg)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state.Clone(),
					Started:    l.started != nil,
				}

			case Start:
				msg.Reply <- l.start(msg)

			case Abort:
				msg.Reply <- l.abort(msg)

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(msg FromClient) {
	if l.started != nil {
		l.reject(msg, ErrAlreadyStarted)
		return
	}
	events, next, err := engine.Apply(l.state, msg.Cmd)
	if err != nil {
		l.reject(msg, err)
		return
	}
	if len(events) == 0 {
		return
	}
	l.state = next
	l.version++
	if engine.ContainsEvent(events, engine.EvtRoleConflict) {
		l.log.Info("role conflict", zap.String("client", msg.ClientID), zap.Int("version", l.version))
	}
	l.log.Debug("command applied",
		zap.String("cmd", string(msg.Cmd.Type)),
		zap.Int("events", len(events)),
		zap.Int("version", l.version))
	l.broadcast(l.snapshot())
}

func (l *Lobby) reject(msg FromClient, err error) {
	l.log.Debug("command rejected", zap.String("cmd", string(msg.Cmd.Type)), zap.Error(err))
	if msg.Errors == nil {
		return
	}
	select {
	case msg.Errors <- err:
	default:
	}
}

func (l *Lobby) start(msg Start) StartResult {
	if l.started != nil {
		return StartResult{Version: l.version, Err: ErrAlreadyStarted}
	}
	if msg.Version >= 0 && msg.Version != l.version {
		return StartResult{Version: l.version, Err: ErrStaleVersion}
	}
	payload, err := engine.BuildPayload(l.state, msg.Profiles)
	if err != nil {
		return StartResult{Version: l.version, Err: err}
	}
	l.started = &payload
	l.version++
	l.log.Info("lobby started",
		zap.String("game", payload.Game),
		zap.String("mode", payload.Mode),
		zap.Ints("participants", payload.SelectedPortraitIDs))
	l.broadcast(l.snapshot())
	return StartResult{Version: l.version, Payload: payload}
}

func (l *Lobby) abort(msg Abort) error {
	if l.started == nil {
		return ErrNotStarted
	}
	if msg.Version != l.version {
		return ErrStaleVersion
	}
	l.started = nil
	l.version++
	l.log.Warn("start aborted", zap.Int("version", l.version))
	l.broadcast(l.snapshot())
	return nil
}

func (l *Lobby) snapshot() Snapshot {
	return Snapshot{Version: l.version, View: engine.Derive(l.state), Started: l.started}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			l.log.Warn("dropping slow client", zap.String("client", id))
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) Code() string { return l.code }

// Done is closed once the lobby loop has been cancelled.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
