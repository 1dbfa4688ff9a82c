package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/internal/engine"
	"github.com/DoyleJ11/arena-lobby/internal/lobby"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, zap.NewNop())
	reply := make(chan *lobby.Lobby, 1)

	state := engine.NewEmptyState()
	h.Inbox() <- CreateLobby{Code: "ZED123", State: state, Reply: reply}
	lb1 := <-reply

	h.Inbox() <- GetLobby{Code: "ZED123", Reply: reply}
	lb2 := <-reply

	if lb1 == nil || lb2 == nil || lb1 != lb2 {
		t.Fatalf("expected same lobby pointer")
	}
	assert.Equal(t, "ZED123", lb1.Code())
}

func TestHub_EnsureReusesAndRemoveShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub(ctx, zap.NewNop())
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- EnsureLobby{Code: "AAA111", State: engine.NewEmptyState(), Reply: reply}
	lb := <-reply
	require.NotNil(t, lb)
	h.Inbox() <- EnsureLobby{Code: "AAA111", State: engine.NewEmptyState(), Reply: reply}
	assert.Same(t, lb, <-reply)

	list := make(chan []string, 1)
	h.Inbox() <- EnsureLobby{Code: "BBB222", State: engine.NewEmptyState(), Reply: reply}
	<-reply
	h.Inbox() <- ListLobbies{Reply: list}
	assert.Equal(t, []string{"AAA111", "BBB222"}, <-list)

	h.Inbox() <- RemoveLobby{Code: "AAA111"}
	h.Inbox() <- GetLobby{Code: "AAA111", Reply: reply}
	assert.Nil(t, <-reply)

	select {
	case <-lb.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("removed lobby was not shut down")
	}
}

func TestHub_ShutdownStopsLobbies(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{Code: "CCC333", State: engine.NewEmptyState(), Reply: reply}
	lb := <-reply

	h.Inbox() <- ShutdownHub{}

	for _, done := range []<-chan struct{}{h.Done(), lb.Done()} {
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("hub shutdown did not propagate")
		}
	}
}

func TestHub_ShutdownSkipsStoppedLobbyWithFullInbox(t *testing.T) {
	h := NewHub(context.Background(), zap.NewNop())
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{Code: "DDD444", State: engine.NewEmptyState(), Reply: reply}
	lb := <-reply

	lb.Inbox() <- lobby.Shutdown{}
	select {
	case <-lb.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("lobby did not stop")
	}
	// Nobody drains the inbox any more.
	for full := false; !full; {
		select {
		case lb.Inbox() <- lobby.Leave{ClientID: "x"}:
		default:
			full = true
		}
	}

	h.Inbox() <- ShutdownHub{}
	select {
	case <-h.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("hub shutdown blocked on a stopped lobby")
	}
}
