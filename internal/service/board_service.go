package service

import (
	"time"

	"github.com/Lutefd/tasas-board/internal/lookup"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/google/uuid"
	"golang.org/x/text/language"
)

type FlagResolver interface {
	ResolveFlag(name string) string
}

type BoardService struct {
	normalizer *Normalizer
	presenter  *Presenter
	flags      FlagResolver
	location   *time.Location
	newID      func() uuid.UUID
}

func NewBoardService(normalizer *Normalizer, presenter *Presenter, flags FlagResolver, location *time.Location) *BoardService {
	if location == nil {
		location = time.Local
	}
	return &BoardService{
		normalizer: normalizer,
		presenter:  presenter,
		flags:      flags,
		location:   location,
		newID:      uuid.New,
	}
}

// Build runs the whole pipeline over one batch of rows. Apart from the
// cycle id, the result depends only on rows and now.
func (s *BoardService) Build(rows []model.RawRow, now time.Time) *model.Board {
	now = now.In(s.location)
	records, asOfDate := s.normalizer.Normalize(rows)
	presentation := s.presenter.Present(records)

	board := &model.Board{
		CycleID:   s.newID(),
		Cards:     []model.Card{},
		Status:    StatusLabel(asOfDate, now),
		AsOfDate:  asOfDate,
		UpdatedAt: now,
	}

	if presentation.Empty {
		board.State = model.BoardStateEmpty
		board.Message = model.MessageEmpty
		return board
	}

	board.State = model.BoardStateReady
	board.Columns = presentation.Columns
	board.Cards = make([]model.Card, 0, len(presentation.Records))
	for _, record := range presentation.Records {
		board.Cards = append(board.Cards, model.Card{
			Flag:     s.flags.ResolveFlag(record.Country),
			Country:  record.Country,
			Rate:     record.Rate,
			Currency: record.Currency,
		})
	}
	return board
}

// Reconnecting replaces the grid with a placeholder. The status label only
// moves forward on a successful cycle, so the previous one is kept.
func (s *BoardService) Reconnecting(previous *model.Board, now time.Time) *model.Board {
	board := &model.Board{
		CycleID:   s.newID(),
		State:     model.BoardStateReconnecting,
		Cards:     []model.Card{},
		Message:   model.MessageReconnecting,
		UpdatedAt: now.In(s.location),
	}
	if previous != nil {
		board.Status = previous.Status
		board.AsOfDate = previous.AsOfDate
	}
	return board
}

func (s *BoardService) Loading(now time.Time) *model.Board {
	return &model.Board{
		State:     model.BoardStateLoading,
		Cards:     []model.Card{},
		Message:   model.MessageLoading,
		UpdatedAt: now.In(s.location),
	}
}

// NewSpanishBoardService wires the pipeline over tables, sorting cards the
// way a Spanish reader expects.
func NewSpanishBoardService(tables *lookup.Tables, location *time.Location) *BoardService {
	resolver := lookup.NewResolver(tables)
	return NewBoardService(NewNormalizer(resolver), NewPresenter(language.Spanish), resolver, location)
}
