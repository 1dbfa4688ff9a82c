package startlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/DoyleJ11/arena-lobby/pkg/types"
)

var newID = func() string { return uuid.NewString() }

type startRow struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	LobbyCode string `gorm:"index;size:16"`
	Game      string `gorm:"size:32"`
	Mode      string `gorm:"size:32"`
	Payload   []byte `gorm:"type:jsonb"`
	CreatedAt time.Time
}

func (startRow) TableName() string { return "lobby_starts" }

// GormRecorder stores each payload as a row.
type GormRecorder struct {
	db *gorm.DB
}

func NewGormRecorder(db *gorm.DB) (*GormRecorder, error) {
	if err := db.AutoMigrate(&startRow{}); err != nil {
		return nil, fmt.Errorf("startlog: migrate: %w", err)
	}
	return &GormRecorder{db: db}, nil
}

func (g *GormRecorder) Consume(ctx context.Context, code string, payload types.StartPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("startlog: encode: %w", err)
	}
	row := startRow{
		ID:        newID(),
		LobbyCode: code,
		Game:      payload.Game,
		Mode:      payload.Mode,
		Payload:   body,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("startlog: record %s: %w", code, err)
	}
	return nil
}

// ForLobby returns the recorded starts of one lobby, oldest first.
func (g *GormRecorder) ForLobby(ctx context.Context, code string) ([]Record, error) {
	var rows []startRow
	err := g.db.WithContext(ctx).Where("lobby_code = ?", code).Order("created_at").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("startlog: list %s: %w", code, err)
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		var p types.StartPayload
		if err := json.Unmarshal(r.Payload, &p); err != nil {
			return nil, fmt.Errorf("startlog: decode %s: %w", r.ID, err)
		}
		out = append(out, Record{ID: r.ID, Code: r.LobbyCode, Payload: p})
	}
	return out, nil
}
