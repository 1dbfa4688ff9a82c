// Package startlog hands finished start payloads to whatever runs the game
// and keeps a record of every start.
package startlog

import (
	"context"
	"sync"

	"go.uber.org/multierr"

	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

type Consumer interface {
	Consume(ctx context.Context, code string, payload types.StartPayload) error
}

// Record is one start as it was handed off.
type Record struct {
	ID      string
	Code    string
	Payload types.StartPayload
}

type multi []Consumer

// Multi sends every payload to all consumers, even when one of them fails.
func Multi(consumers ...Consumer) Consumer {
	return multi(consumers)
}

func (m multi) Consume(ctx context.Context, code string, payload types.StartPayload) error {
	var err error
	for _, c := range m {
		err = multierr.Append(err, c.Consume(ctx, code, payload))
	}
	return err
}

// MemoryRecorder keeps starts in memory.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryRecorder() *MemoryRecorder { return &MemoryRecorder{} }

func (m *MemoryRecorder) Consume(_ context.Context, code string, payload types.StartPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, Record{ID: newID(), Code: code, Payload: payload})
	return nil
}

func (m *MemoryRecorder) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}
