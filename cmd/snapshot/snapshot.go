package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/lookup"
	"github.com/Lutefd/tasas-board/internal/model"
	"github.com/Lutefd/tasas-board/internal/render"
	"github.com/Lutefd/tasas-board/internal/service"
	"github.com/Lutefd/tasas-board/internal/worker"
	"github.com/joho/godotenv"
)

type dependencies struct {
	loadEnv    func(...string) error
	loadConfig func(requirePort bool) (commons.Config, error)
	newSource  func(config commons.Config) (worker.RowSource, error)
	timeNow    func() time.Time
	out        io.Writer
}

var defaultDeps = dependencies{
	loadEnv:    godotenv.Load,
	loadConfig: commons.LoadConfig,
	newSource: func(config commons.Config) (worker.RowSource, error) {
		return worker.NewSheetSource(config)
	},
	timeNow: time.Now,
	out:     os.Stdout,
}

func main() {
	asHTML := flag.Bool("html", false, "print the rendered page instead of the JSON board")
	flag.Parse()

	if err := run(context.Background(), defaultDeps, *asHTML); err != nil {
		log.Fatal(err)
	}
}

// run fetches the sheet once and prints the resulting board.
func run(ctx context.Context, deps dependencies, asHTML bool) error {
	if err := deps.loadEnv(); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	config, err := deps.loadConfig(false)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	tables, err := lookup.LoadTables(config.LookupTablesFile)
	if err != nil {
		return fmt.Errorf("error loading lookup tables: %w", err)
	}
	boards := service.NewSpanishBoardService(tables, config.Location)

	source, err := deps.newSource(config)
	if err != nil {
		return fmt.Errorf("error creating sheet source: %w", err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, config.FetchTimeout)
	defer cancel()

	rows, err := source.FetchRows(fetchCtx)
	if err != nil {
		return fmt.Errorf("error fetching rates: %w", err)
	}

	board := boards.Build(rows, deps.timeNow())
	if asHTML {
		return writeHTML(deps.out, board, config.RefreshInterval)
	}
	return writeJSON(deps.out, board)
}

func writeJSON(out io.Writer, board *model.Board) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(board); err != nil {
		return fmt.Errorf("error encoding board: %w", err)
	}
	return nil
}

func writeHTML(out io.Writer, board *model.Board, refresh time.Duration) error {
	renderer, err := render.NewRenderer(refresh)
	if err != nil {
		return err
	}
	return renderer.RenderPage(out, board)
}
