package service

import (
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
)

type BoardBuilder interface {
	Build(rows []model.RawRow, now time.Time) *model.Board
	Reconnecting(previous *model.Board, now time.Time) *model.Board
	Loading(now time.Time) *model.Board
}
