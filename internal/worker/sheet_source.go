package worker

import (
	"context"

	"github.com/Lutefd/tasas-board/internal/model"
)

type RowSource interface {
	FetchRows(ctx context.Context) ([]model.RawRow, error)
}
