package service

import (
	"strings"

	"github.com/Lutefd/tasas-board/internal/model"
)

type CurrencyResolver interface {
	ResolveCurrency(name string) string
}

type Normalizer struct {
	currencies CurrencyResolver
}

func NewNormalizer(currencies CurrencyResolver) *Normalizer {
	return &Normalizer{currencies: currencies}
}

// Normalize keeps rows whose trimmed country and rate are both non-empty.
// asOfDate is the last non-empty date seen in row order, or "" if none.
func (n *Normalizer) Normalize(rows []model.RawRow) ([]model.RateRecord, string) {
	records := make([]model.RateRecord, 0, len(rows))
	asOfDate := ""

	for _, row := range rows {
		if date := strings.TrimSpace(row[model.ColumnDate]); date != "" {
			asOfDate = date
		}

		rawCountry := row[model.ColumnCountry]
		country := strings.TrimSpace(rawCountry)
		rate := strings.TrimSpace(row[model.ColumnRate])
		if country == "" || rate == "" {
			continue
		}

		records = append(records, model.RateRecord{
			Country:  country,
			Rate:     rate,
			Currency: n.currencies.ResolveCurrency(rawCountry),
		})
	}

	return records, asOfDate
}
