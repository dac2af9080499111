package model

import (
	"time"

	"github.com/google/uuid"
)

type BoardState string

const (
	BoardStateLoading      BoardState = "loading"
	BoardStateReady        BoardState = "ready"
	BoardStateEmpty        BoardState = "empty"
	BoardStateReconnecting BoardState = "reconnecting"
)

const (
	MessageLoading      = "Cargando tasas..."
	MessageEmpty        = "No hay tasas para mostrar."
	MessageReconnecting = "Reconectando..."
)

// Board is the render plan produced by one refresh cycle. Cards is only
// populated in the ready state; every other state carries a Message.
type Board struct {
	CycleID   uuid.UUID  `json:"cycle_id"`
	State     BoardState `json:"state"`
	Cards     []Card     `json:"cards"`
	Columns   int        `json:"columns"`
	Message   string     `json:"message,omitempty"`
	Status    string     `json:"status"`
	AsOfDate  string     `json:"as_of_date,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (b *Board) IsReady() bool {
	return b.State == BoardStateReady
}
