package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/logger"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/service"
)

type Refresher interface {
	RunOnce(ctx context.Context) error
	IsRunning() bool
}

type BoardRenderer interface {
	RenderGrid(w io.Writer, board *model.Board) error
	RenderPage(w io.Writer, board *model.Board) error
}

type DashboardHandler struct {
	boards    cache.Cache
	builder   service.BoardBuilder
	renderer  BoardRenderer
	refresher Refresher
	now       func() time.Time
}

// NewDashboardHandler serves whatever board is stored. refresher may be
// nil when another process publishes the boards.
func NewDashboardHandler(boards cache.Cache, builder service.BoardBuilder, renderer BoardRenderer, refresher Refresher) *DashboardHandler {
	return &DashboardHandler{
		boards:    boards,
		builder:   builder,
		renderer:  renderer,
		refresher: refresher,
		now:       time.Now,
	}
}

func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, h.boardOrPlaceholder(r.Context()), h.renderer.RenderPage)
}

func (h *DashboardHandler) Grid(w http.ResponseWriter, r *http.Request) {
	h.renderHTML(w, h.boardOrPlaceholder(r.Context()), h.renderer.RenderGrid)
}

func (h *DashboardHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.currentBoard(r.Context())
	if err != nil {
		commons.RespondWithError(w, http.StatusServiceUnavailable, "Board unavailable")
		return
	}
	commons.RespondWithJSON(w, http.StatusOK, board)
}

func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		commons.RespondWithError(w, http.StatusServiceUnavailable, "Refresher is disabled on this instance")
		return
	}

	err := h.refresher.RunOnce(r.Context())
	switch {
	case err == nil:
		commons.RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Board refreshed"})
	case errors.Is(err, model.ErrCycleInProgress):
		commons.RespondWithError(w, http.StatusConflict, "A refresh is already in progress")
	case errors.Is(err, model.ErrSourceUnreachable), errors.Is(err, model.ErrMalformedSource):
		commons.RespondWithError(w, http.StatusBadGateway, "Rate source unavailable")
	default:
		commons.RespondWithError(w, http.StatusInternalServerError, "Refresh failed")
	}
}

// currentBoard returns the stored board, or the loading placeholder when
// no cycle has published one yet.
func (h *DashboardHandler) currentBoard(ctx context.Context) (*model.Board, error) {
	board, err := h.boards.Get(ctx, commons.BoardCacheKey)
	if errors.Is(err, model.ErrBoardNotFound) {
		return h.builder.Loading(h.now()), nil
	}
	if err != nil {
		logger.Errorf("failed to read board: %v", err)
		return nil, err
	}
	return board, nil
}

func (h *DashboardHandler) boardOrPlaceholder(ctx context.Context) *model.Board {
	board, err := h.currentBoard(ctx)
	if err != nil {
		return h.builder.Loading(h.now())
	}
	return board
}

func (h *DashboardHandler) renderHTML(w http.ResponseWriter, board *model.Board, render func(io.Writer, *model.Board) error) {
	var buf bytes.Buffer
	if err := render(&buf, board); err != nil {
		logger.Errorf("failed to render board: %v", err)
		http.Error(w, "failed to render board", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
