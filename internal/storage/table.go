package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "github.com/shortyhq/shorty/internal/errors"
	"github.com/shortyhq/shorty/internal/models"
)

// TableStore talks to a remote spreadsheet-like table over its rows API:
// the whole table is fetched and scanned for lookups, and clicks are
// updated per row with a read-modify-write. The remote table offers no
// atomic increment, so concurrent increments from different registry
// instances are last-writer-wins; within one instance a mutex serializes
// mutations.
type TableStore struct {
	mu       sync.Mutex
	endpoint string
	apiKey   string
	client   *http.Client
}

// tableRow mirrors one row of the remote table. The row ID is assigned by
// the remote store and only matters for the per-row update path.
type tableRow struct {
	ID        string    `json:"id,omitempty"`
	Code      string    `json:"code"`
	LongURL   string    `json:"longUrl"`
	ShortURL  string    `json:"shortUrl"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"date"`
	OwnerID   string    `json:"ownerId"`
}

type rowsResponse struct {
	Rows []tableRow `json:"rows"`
}

// NewTableStore returns a store bound to the given rows API endpoint.
// The API key, when set, is sent as a bearer token.
func NewTableStore(endpoint, apiKey string) (*TableStore, error) {
	if endpoint == "" {
		return nil, apperrors.StorageError{Backend: "table", Op: "open", Err: fmt.Errorf("empty endpoint")}
	}
	return &TableStore{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *TableStore) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	row, err := s.findRow(ctx, code)
	if err != nil {
		return nil, err
	}
	link := rowToLink(row)
	return &link, nil
}

func (s *TableStore) Insert(ctx context.Context, link *models.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.findRow(ctx, link.Code); err == nil {
		return apperrors.ErrDuplicateCode
	} else if !errors.Is(err, apperrors.ErrShortCodeNotFound) {
		return err
	}

	row := tableRow{
		Code:      link.Code,
		LongURL:   link.LongURL,
		ShortURL:  link.ShortURL,
		Clicks:    link.Clicks,
		CreatedAt: link.CreatedAt,
		OwnerID:   link.OwnerID,
	}
	return s.do(ctx, http.MethodPost, "/rows", row, nil)
}

func (s *TableStore) IncrementClicks(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.findRow(ctx, code)
	if err != nil {
		return err
	}
	patch := map[string]int64{"clicks": row.Clicks + 1}
	return s.do(ctx, http.MethodPatch, "/rows/"+row.ID, patch, nil)
}

func (s *TableStore) ListAll(ctx context.Context) ([]models.Link, error) {
	rows, err := s.listRows(ctx)
	if err != nil {
		return nil, err
	}
	links := make([]models.Link, len(rows))
	for i, row := range rows {
		links[i] = rowToLink(&row)
	}
	return links, nil
}

func (s *TableStore) RecordClick(ctx context.Context, click *models.Click) error {
	return s.do(ctx, http.MethodPost, "/events", click, nil)
}

func (s *TableStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *TableStore) findRow(ctx context.Context, code string) (*tableRow, error) {
	rows, err := s.listRows(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Code == code {
			return &rows[i], nil
		}
	}
	return nil, apperrors.ErrShortCodeNotFound
}

func (s *TableStore) listRows(ctx context.Context) ([]tableRow, error) {
	var resp rowsResponse
	if err := s.do(ctx, http.MethodGet, "/rows", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// do performs one API call, encoding body as JSON when present and decoding
// the response into out when asked for.
func (s *TableStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apperrors.StorageError{Backend: "table", Op: method + " " + path, Err: err}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return apperrors.StorageError{Backend: "table", Op: method + " " + path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.StorageError{Backend: "table", Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.StorageError{
			Backend: "table",
			Op:      method + " " + path,
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.StorageError{Backend: "table", Op: method + " " + path, Err: err}
		}
	}
	return nil
}

func rowToLink(row *tableRow) models.Link {
	return models.Link{
		Code:      row.Code,
		LongURL:   row.LongURL,
		ShortURL:  row.ShortURL,
		Clicks:    row.Clicks,
		CreatedAt: row.CreatedAt,
		OwnerID:   row.OwnerID,
	}
}

var _ Store = (*TableStore)(nil)
