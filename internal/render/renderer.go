package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Lutefd/tasas-board/internal/model"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Renderer turns a board into the dashboard markup.
type Renderer struct {
	templates      *template.Template
	refreshSeconds int
}

// NewRenderer parses the embedded templates. The page asks the browser to
// reload itself every refresh.
func NewRenderer(refresh time.Duration) (*Renderer, error) {
	templates, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	seconds := int(refresh / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return &Renderer{templates: templates, refreshSeconds: seconds}, nil
}

func (r *Renderer) RenderGrid(w io.Writer, board *model.Board) error {
	if err := r.templates.ExecuteTemplate(w, "grid", board); err != nil {
		return fmt.Errorf("failed to render grid: %w", err)
	}
	return nil
}

func (r *Renderer) RenderPage(w io.Writer, board *model.Board) error {
	data := struct {
		Board          *model.Board
		RefreshSeconds int
	}{
		Board:          board,
		RefreshSeconds: r.refreshSeconds,
	}

	if err := r.templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}
