package worker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Lutefd/tasas-board/internal/commons"
	"github.com/Lutefd/tasas-board/internal/model"
)

type SheetClient struct {
	sheetURL string
	format   SheetFormat
	client   *http.Client
	now      func() time.Time
}

type SheetClientOption func(*SheetClient)

func WithHTTPClient(client *http.Client) SheetClientOption {
	return func(c *SheetClient) {
		c.client = client
	}
}

func WithFormat(format SheetFormat) SheetClientOption {
	return func(c *SheetClient) {
		c.format = format
	}
}

func WithClock(now func() time.Time) SheetClientOption {
	return func(c *SheetClient) {
		c.now = now
	}
}

func NewSheetClient(sheetURL string, opts ...SheetClientOption) *SheetClient {
	c := &SheetClient{
		sheetURL: sheetURL,
		format:   SheetFormatCSV,
		client:   &http.Client{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewSheetSource builds the client described by config.
func NewSheetSource(config commons.Config) (*SheetClient, error) {
	format, err := ParseSheetFormat(config.SheetFormat)
	if err != nil {
		return nil, err
	}
	return NewSheetClient(config.SheetURL, WithFormat(format)), nil
}

func (c *SheetClient) FetchRows(ctx context.Context) ([]model.RawRow, error) {
	requestURL, err := c.requestURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request: %v", model.ErrSourceUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: sheet request failed with status code: %d", model.ErrSourceUnreachable, resp.StatusCode)
	}

	rows, err := ParseRows(c.format, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode sheet: %w", err)
	}
	return rows, nil
}

// requestURL appends a timestamp so intermediate caches never serve a
// stale export.
func (c *SheetClient) requestURL() (string, error) {
	u, err := url.Parse(c.sheetURL)
	if err != nil {
		return "", fmt.Errorf("invalid sheet URL: %w", err)
	}
	query := u.Query()
	query.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = query.Encode()
	return u.String(), nil
}
