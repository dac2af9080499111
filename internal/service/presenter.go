package service

import (
	"slices"

	"github.com/Lutefd/tasas-board/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Presentation struct {
	Records []model.RateRecord
	Columns int
	Empty   bool
}

type Presenter struct {
	locale language.Tag
}

func NewPresenter(locale language.Tag) *Presenter {
	return &Presenter{locale: locale}
}

// Present sorts a copy of records by country, ignoring case and accents,
// and picks the grid density for the result.
func (p *Presenter) Present(records []model.RateRecord) Presentation {
	sorted := slices.Clone(records)

	// collate.Collator keeps internal buffers, one per call.
	collator := collate.New(p.locale, collate.IgnoreCase, collate.IgnoreDiacritics)
	slices.SortStableFunc(sorted, func(a, b model.RateRecord) int {
		return collator.CompareString(a.Country, b.Country)
	})

	return Presentation{
		Records: sorted,
		Columns: ColumnsFor(len(sorted)),
		Empty:   len(sorted) == 0,
	}
}

func ColumnsFor(count int) int {
	switch {
	case count <= 9:
		return 3
	case count <= 12:
		return 4
	default:
		return 5
	}
}
