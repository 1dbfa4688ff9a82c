package types

import (
	"github.com/DoyleJ11/arena-lobby/internal/engine"
	wire "github.com/DoyleJ11/arena-lobby/pkg/types"
)

type ClientMessage struct {
	Type          string `json:"type"`
	ParticipantID int    `json:"participant_id,omitempty"`
	OtherID       int    `json:"other_id,omitempty"`
	Game          string `json:"game,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Value         int    `json:"value,omitempty"`
	Seat          int    `json:"seat,omitempty"`
	Label         string `json:"label,omitempty"`
}

type ServerMessage struct {
	Type    string             `json:"type"` // "StateSnapshot" | "Started" | "Error"
	Version int                `json:"version,omitempty"`
	View    *engine.View       `json:"view,omitempty"`
	Payload *wire.StartPayload `json:"payload,omitempty"`
	Error   string             `json:"error,omitempty"`
}
