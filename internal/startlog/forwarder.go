package startlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

var ErrRejected = errors.New("game server rejected start")

const StartGamePath = "/api/start-game"

// Forwarder posts payloads to the game server.
type Forwarder struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

func NewForwarder(baseURL string, client *http.Client, log *zap.Logger) *Forwarder {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Forwarder{baseURL: strings.TrimRight(baseURL, "/"), client: client, log: log}
}

func (f *Forwarder) Consume(ctx context.Context, code string, payload types.StartPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("startlog: encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+StartGamePath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("startlog: forward %s: %w", code, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("startlog: forward %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %d %s", ErrRejected, code, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	f.log.Info("start forwarded", zap.String("lobby", code), zap.Int("status", resp.StatusCode))
	return nil
}
