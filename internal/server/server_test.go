package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Lutefd/tasas-board/internal/cache"
	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/handler"
	"github.com/Lutefd/tasas-board/internal/lookup"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/render"
	"github.com/Lutefd/tasas-board/internal/service"
	"github.com/Lutefd/tasas-board/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const (
	sheetDown  = 0
	sheetRates = 1
	sheetEmpty = 2
)

const ratesCSV = "Pais,Tasa,dia\n" +
	"Perú,3.71,\n" +
	"Argentina,1.234,12/05\n" +
	"México,17.10,\n" +
	",99,\n"

const emptyCSV = "Pais,Tasa,dia\n,,\n"

type testEnv struct {
	server     *Server
	sheetState *atomic.Int32
	sheetHits  *atomic.Int32
}

func newTestEnv(t *testing.T, withRefresher bool) *testEnv {
	t.Helper()

	state := new(atomic.Int32)
	hits := new(atomic.Int32)
	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch state.Load() {
		case sheetRates:
			w.Write([]byte(ratesCSV))
		case sheetEmpty:
			w.Write([]byte(emptyCSV))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(sheet.Close)

	tables, err := lookup.DefaultTables()
	require.NoError(t, err)
	resolver := lookup.NewResolver(tables)
	boards := service.NewBoardService(service.NewNormalizer(resolver), service.NewPresenter(language.Spanish), resolver, time.UTC)
	store := cache.NewMemoryCache()
	renderer, err := render.NewRenderer(time.Minute)
	require.NoError(t, err)

	var refresher handler.Refresher
	if withRefresher {
		refresher = worker.NewBoardRefresher(worker.NewSheetClient(sheet.URL), boards, store, time.Minute)
	}

	config := commons.Config{
		CORSAllowedOrigins: []string{"http://tv.local"},
		RefreshRPS:         1000,
	}
	dashboard := handler.NewDashboardHandler(store, boards, renderer, refresher)

	return &testEnv{
		server:     NewServer(config, dashboard),
		sheetState: state,
		sheetHits:  hits,
	}
}

func (e *testEnv) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) board(t *testing.T) model.Board {
	t.Helper()
	rr := e.do(t, http.MethodGet, "/api/board")
	require.Equal(t, http.StatusOK, rr.Code)
	var board model.Board
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	return board
}

func TestServer_RefreshCycle(t *testing.T) {
	env := newTestEnv(t, true)

	page := env.do(t, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), `<div class="loading">Cargando tasas...</div>`)

	env.sheetState.Store(sheetDown)
	rr := env.do(t, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	reconnecting := env.board(t)
	assert.Equal(t, model.BoardStateReconnecting, reconnecting.State)
	assert.Equal(t, model.MessageReconnecting, reconnecting.Message)
	assert.Empty(t, reconnecting.Cards)

	env.sheetState.Store(sheetRates)
	rr = env.do(t, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusAccepted, rr.Code)

	ready := env.board(t)
	assert.Equal(t, model.BoardStateReady, ready.State)
	assert.Empty(t, ready.Message)
	assert.Equal(t, 3, ready.Columns)
	assert.Equal(t, "12/05", ready.AsOfDate)
	require.Len(t, ready.Cards, 3)
	assert.Equal(t, []string{"Argentina", "México", "Perú"}, []string{ready.Cards[0].Country, ready.Cards[1].Country, ready.Cards[2].Country})
	assert.Equal(t, "ARS", ready.Cards[0].Currency)
	assert.Empty(t, ready.Cards[1].Currency)
	assert.True(t, strings.HasPrefix(ready.Status, "Actualizado: 12/05 - "))

	grid := env.do(t, http.MethodGet, "/grid")
	assert.Equal(t, http.StatusOK, grid.Code)
	assert.Equal(t, 3, strings.Count(grid.Body.String(), `class="rate-card"`))
	assert.NotContains(t, grid.Body.String(), `class="loading"`)

	env.sheetState.Store(sheetDown)
	env.do(t, http.MethodPost, "/refresh")
	stale := env.board(t)
	assert.Equal(t, model.BoardStateReconnecting, stale.State)
	assert.Equal(t, ready.Status, stale.Status)

	env.sheetState.Store(sheetEmpty)
	rr = env.do(t, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusAccepted, rr.Code)
	grid = env.do(t, http.MethodGet, "/grid")
	assert.Contains(t, grid.Body.String(), `<div class="loading">No hay tasas para mostrar.</div>`)
	assert.NotContains(t, grid.Body.String(), `class="rate-card"`)
	assert.Equal(t, int32(4), env.sheetHits.Load())

	health := env.do(t, http.MethodGet, "/healthz")
	assert.JSONEq(t, `{"status":"ok","refresher":"idle"}`, health.Body.String())
}

func TestServer_RefreshDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodPost, "/refresh")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, int32(0), env.sheetHits.Load())

	health := env.do(t, http.MethodGet, "/healthz")
	assert.JSONEq(t, `{"status":"ok","refresher":"disabled"}`, health.Body.String())
}

func TestServer_Routes(t *testing.T) {
	env := newTestEnv(t, false)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/healthz", expectedStatus: http.StatusOK},
		{name: "Page", method: http.MethodGet, path: "/", expectedStatus: http.StatusOK},
		{name: "Grid", method: http.MethodGet, path: "/grid", expectedStatus: http.StatusOK},
		{name: "Board", method: http.MethodGet, path: "/api/board", expectedStatus: http.StatusOK},
		{name: "Refresh only accepts POST", method: http.MethodGet, path: "/refresh", expectedStatus: http.StatusMethodNotAllowed},
		{name: "Unknown route", method: http.MethodGet, path: "/currency/convert", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}

func TestServer_CORS(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Origin", "http://tv.local")
	rr := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "http://tv.local", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/board", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RefreshRateLimited(t *testing.T) {
	env := newTestEnv(t, true)
	env.server = NewServer(commons.Config{RefreshRPS: 0.001}, handler.NewDashboardHandler(
		cache.NewMemoryCache(), nil, nil, refresherFunc(func(ctx context.Context) error { return nil }),
	))

	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/refresh").Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodPost, "/refresh").Code)
}

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) RunOnce(ctx context.Context) error {
	return f(ctx)
}

func (f refresherFunc) IsRunning() bool {
	return false
}

func TestServer_StartAndShutdown(t *testing.T) {
	env := newTestEnv(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- env.server.Start(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(commons.ServerShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}
