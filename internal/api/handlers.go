// Package api serves the read side: crawled documents paged by seq
// cursor, behind a static access key.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/boardlab/amazon-board-crawler/internal/database"
)

// PageReader is the slice of the store the handlers need.
type PageReader interface {
	ReadReviews(ctx context.Context, lastSeq int64, count int) (database.Page, error)
	ReadRankings(ctx context.Context, lastSeq int64, count int) (database.Page, error)
	ReadProducts(ctx context.Context, lastSeq int64, count int) (database.Page, error)
}

const (
	statusOK    = "OK"
	statusError = "ERROR"

	defaultPageSize = 100
	maxPageSize     = 1000
)

// Envelope is the fixed response shape of every list endpoint. Result
// is never null; an empty page serializes as [].
type Envelope struct {
	Status      string            `json:"status"`
	Message     string            `json:"message"`
	Result      []json.RawMessage `json:"result"`
	RemainCount int64             `json:"remain_count"`
	HasNext     bool              `json:"has_next"`
	TotalCount  int64             `json:"total_count"`
}

type Handlers struct {
	store     PageReader
	accessKey string
	logger    *slog.Logger
}

func NewHandlers(store PageReader, accessKey string, logger *slog.Logger) *Handlers {
	return &Handlers{
		store:     store,
		accessKey: accessKey,
		logger:    logger,
	}
}

func (h *Handlers) GetRanking(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.store.ReadRankings)
}

func (h *Handlers) GetReviews(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.store.ReadReviews)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.store.ReadProducts)
}

func (h *Handlers) servePage(w http.ResponseWriter, r *http.Request, read func(context.Context, int64, int) (database.Page, error)) {
	if !h.authorized(r) {
		h.respondError(w, http.StatusUnauthorized, "invalid access key")
		return
	}

	lastSeq, err := parseInt64(r.URL.Query().Get("last_seq"), 0)
	if err != nil || lastSeq < 0 {
		h.respondError(w, http.StatusBadRequest, "last_seq must be a non-negative integer")
		return
	}

	count, err := parseInt64(r.URL.Query().Get("count"), defaultPageSize)
	if err != nil || count <= 0 {
		h.respondError(w, http.StatusBadRequest, "count must be a positive integer")
		return
	}
	if count > maxPageSize {
		count = maxPageSize
	}

	page, err := read(r.Context(), lastSeq, int(count))
	if err != nil {
		h.logger.Error("failed to read page", "path", r.URL.Path, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to read documents")
		return
	}

	result := page.Items
	if result == nil {
		result = []json.RawMessage{}
	}

	h.respondJSON(w, http.StatusOK, Envelope{
		Status:      statusOK,
		Message:     "success",
		Result:      result,
		RemainCount: page.Remain,
		HasNext:     page.HasNext(),
		TotalCount:  page.Total,
	})
}

// authorized accepts the key from either the query string or a header.
// An empty configured key disables the check.
func (h *Handlers) authorized(r *http.Request) bool {
	if h.accessKey == "" {
		return true
	}
	if key := r.URL.Query().Get("access_key"); key == h.accessKey {
		return true
	}
	return r.Header.Get("X-Access-Key") == h.accessKey
}

func parseInt64(raw string, fallback int64) (int64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, Envelope{
		Status:  statusError,
		Message: message,
		Result:  []json.RawMessage{},
	})
}
