package model

// Column names of the published sheet. They must match the header row exactly.
const (
	ColumnCountry = "Pais"
	ColumnRate    = "Tasa"
	ColumnDate    = "dia"
)

// RawRow is one sheet row keyed by header name. A missing key means the
// cell was absent from the row.
type RawRow map[string]string

// RateRecord is a validated row. Rate is kept as the source text.
type RateRecord struct {
	Country  string `json:"country"`
	Rate     string `json:"rate"`
	Currency string `json:"currency"`
}

// Card is a RateRecord enriched with its resolved flag.
type Card struct {
	Flag     string `json:"flag"`
	Country  string `json:"country"`
	Rate     string `json:"rate"`
	Currency string `json:"currency"`
}
