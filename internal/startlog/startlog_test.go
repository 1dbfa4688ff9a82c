package startlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/arena-lobby/internal/storage"
	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

func samplePayload() types.StartPayload {
	return types.StartPayload{
		Game:                "avalon",
		Mode:                "observe",
		Language:            "en",
		NumPlayers:          5,
		SelectedPortraitIDs: []int{3, 7, 1, 9, 2},
	}
}

type consumerFunc func(ctx context.Context, code string, p types.StartPayload) error

func (f consumerFunc) Consume(ctx context.Context, code string, p types.StartPayload) error {
	return f(ctx, code, p)
}

func TestMulti_CallsEveryConsumerAndJoinsErrors(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	rec := NewMemoryRecorder()

	err := Multi(
		consumerFunc(func(context.Context, string, types.StartPayload) error { return errA }),
		rec,
		consumerFunc(func(context.Context, string, types.StartPayload) error { return errB }),
	).Consume(context.Background(), "ABC123", samplePayload())

	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Len(t, rec.Records(), 1)
}

func TestMemoryRecorder(t *testing.T) {
	rec := NewMemoryRecorder()
	require.NoError(t, rec.Consume(context.Background(), "ABC123", samplePayload()))

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ABC123", records[0].Code)
	_, err := uuid.Parse(records[0].ID)
	assert.NoError(t, err)
	assert.Equal(t, []int{3, 7, 1, 9, 2}, records[0].Payload.SelectedPortraitIDs)
}

func TestForwarder_PostsPayload(t *testing.T) {
	var got types.StartPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, StartGamePath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL+"/", srv.Client(), zaptest.NewLogger(t))
	require.NoError(t, f.Consume(context.Background(), "ABC123", samplePayload()))
	assert.Equal(t, samplePayload(), got)
}

func TestForwarder_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "game already running", http.StatusConflict)
	}))
	defer srv.Close()

	f := NewForwarder(srv.URL, srv.Client(), zaptest.NewLogger(t))
	err := f.Consume(context.Background(), "ABC123", samplePayload())
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "game already running")
}

func TestGormRecorder(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := storage.Open(dsn, false, zaptest.NewLogger(t))
	require.NoError(t, err)
	code := "T" + uuid.NewString()[:8]
	t.Cleanup(func() {
		db.Exec("DELETE FROM lobby_starts WHERE lobby_code = ?", code)
		_ = storage.Close(db)
	})

	rec, err := NewGormRecorder(db)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, rec.Consume(ctx, code, samplePayload()))

	records, err := rec.ForLobby(ctx, code)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, samplePayload(), records[0].Payload)
}
