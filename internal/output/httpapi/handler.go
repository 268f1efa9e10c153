// Package httpapi serves the scored trend lists and narrative summaries
// over a small JSON API. It stays thin: all scoring happens upstream, the
// handlers only select, truncate and encode.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/core/llm"
	"github.com/lueurxax/trend-pulse/internal/ingest"
	"github.com/lueurxax/trend-pulse/internal/platform/config"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
	db "github.com/lueurxax/trend-pulse/internal/storage"
)

const (
	// Route path constants.
	routeTrends  = "trends"
	routeSummary = "trends/summary"
	routeHistory = "trends/history"

	// Query parameter defaults and caps.
	defaultCountry      = "US"
	defaultServeLimit   = 50
	maxServeLimit       = 200
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50

	// Source constants.
	sourceFresh    = "fresh"
	sourceSnapshot = "snapshot"

	// Content type constants.
	contentTypeHeader      = "Content-Type"
	contentTypeJSON        = "application/json; charset=utf-8"
	contentTypeEventStream = "text/event-stream"

	// SSE framing constants.
	sseDataPrefix = "data: %s\n\n"
	sseDone       = "data: [DONE]\n\n"

	// Error message constants.
	errMsgNotFound        = "Unknown endpoint."
	errMsgMethod          = "Only GET is supported."
	errMsgNoSnapshot      = "No stored snapshot for this selection yet."
	errMsgSnapshotLoad    = "Failed to load snapshot."
	errMsgAggregation     = "Aggregation failed."
	errMsgSummaryFailed   = "Summary generation failed."
	errMsgHistoryFailed   = "Failed to load snapshot history."
	errMsgHistoryDisabled = "Snapshot history is not available."

	// Log field names.
	logFieldRequestID = "request_id"
	logFieldRoute     = "route"
	logFieldCountry   = "country"
	logFieldCategory  = "category"
	logFieldWindow    = "window"
	logFieldSource    = "source"
)

// Aggregator runs one fetch-and-score cycle on demand.
type Aggregator interface {
	Run(ctx context.Context, query ingest.Query) (*domain.Snapshot, error)
}

// SnapshotReader serves stored cycles for the snapshot source and history.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, country string, category domain.Category, window domain.TimeWindow) (*domain.Snapshot, error)
	ListSnapshots(ctx context.Context, country string, category domain.Category, window domain.TimeWindow, limit int) ([]*domain.Snapshot, error)
}

// ContextProvider supplies per-item article context for summaries.
type ContextProvider interface {
	ContextFor(ctx context.Context, items []*domain.TrendItem, topN int) map[string]string
}

// Handler serves the trends API.
type Handler struct {
	cfg        *config.Config
	aggregator Aggregator
	snapshots  SnapshotReader
	summarizer llm.Client
	contexts   ContextProvider
	logger     *zerolog.Logger
}

// NewHandler creates a trends API handler. snapshots and contexts may be
// nil; the snapshot source and summary enrichment degrade accordingly.
func NewHandler(
	cfg *config.Config,
	aggregator Aggregator,
	snapshots SnapshotReader,
	summarizer llm.Client,
	contexts ContextProvider,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		cfg:        cfg,
		aggregator: aggregator,
		snapshots:  snapshots,
		summarizer: summarizer,
		contexts:   contexts,
		logger:     logger,
	}
}

// ServeHTTP routes requests to trends endpoints. The mux strips the /api/
// prefix before the handler sees the path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	route, status := h.dispatch(w, r)

	observability.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) (route string, status int) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/"), "/")

	if r.Method != http.MethodGet {
		return path, h.writeError(w, http.StatusMethodNotAllowed, errMsgMethod)
	}

	switch path {
	case routeTrends:
		return routeTrends, h.handleTrends(w, r)
	case routeSummary:
		return routeSummary, h.handleSummary(w, r)
	case routeHistory:
		return routeHistory, h.handleHistory(w, r)
	default:
		return "not_found", h.writeError(w, http.StatusNotFound, errMsgNotFound)
	}
}

// TrendsResponse is the JSON payload for the scored trend list.
type TrendsResponse struct {
	Items          []*domain.TrendItem   `json:"items"`
	PlatformCounts domain.PlatformCounts `json:"platform_counts"`
	Total          int                   `json:"total"`
	Country        string                `json:"country"`
	Category       domain.Category       `json:"category"`
	Window         domain.TimeWindow     `json:"window"`
	GeneratedAt    time.Time             `json:"generated_at"`
}

// SummaryResponse is the JSON payload for a non-streamed narrative.
type SummaryResponse struct {
	Summary     string            `json:"summary"`
	ItemCount   int               `json:"item_count"`
	Country     string            `json:"country"`
	Category    domain.Category   `json:"category"`
	Window      domain.TimeWindow `json:"window"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// SnapshotMeta is one stored cycle in the history listing, without items.
type SnapshotMeta struct {
	ID             string                `json:"id"`
	ItemCount      int                   `json:"item_count"`
	PlatformCounts domain.PlatformCounts `json:"platform_counts"`
	CreatedAt      time.Time             `json:"created_at"`
}

// HistoryResponse is the JSON payload for the snapshot history listing.
type HistoryResponse struct {
	Snapshots []SnapshotMeta    `json:"snapshots"`
	Country   string            `json:"country"`
	Category  domain.Category   `json:"category"`
	Window    domain.TimeWindow `json:"window"`
}

func (h *Handler) handleTrends(w http.ResponseWriter, r *http.Request) int {
	query, source := h.parseTrendsQuery(r)
	logger := h.requestLogger(r, routeTrends, query, source)

	snap, status, errMsg := h.resolveSnapshot(r.Context(), &logger, query, source)
	if snap == nil {
		return h.writeError(w, status, errMsg)
	}

	limit := parseLimit(r, defaultServeLimit, maxServeLimit)

	resp := TrendsResponse{
		Items:          domain.TopN(snap.Items, limit),
		PlatformCounts: snap.PlatformCounts,
		Total:          snap.ItemCount,
		Country:        snap.Country,
		Category:       snap.Category,
		Window:         snap.Window,
		GeneratedAt:    snap.CreatedAt,
	}

	return h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) int {
	query, source := h.parseTrendsQuery(r)
	logger := h.requestLogger(r, routeSummary, query, source)

	snap, status, errMsg := h.resolveSnapshot(r.Context(), &logger, query, source)
	if snap == nil {
		return h.writeError(w, status, errMsg)
	}

	top := domain.TopN(snap.Items, h.cfg.SummaryTopN)

	req := llm.SummaryRequest{
		Country:  snap.Country,
		Category: snap.Category,
		Window:   snap.Window,
		Items:    top,
	}

	if h.contexts != nil {
		req.Context = h.contexts.ContextFor(r.Context(), top, h.cfg.SummaryTopN)
	}

	if parseBool(r.URL.Query().Get("stream")) {
		return h.streamSummary(w, r, &logger, req)
	}

	text, err := h.summarizer.GenerateTrendSummary(r.Context(), req)
	if err != nil {
		logger.Error().Err(err).Msg("Summary generation failed")

		return h.writeError(w, http.StatusBadGateway, errMsgSummaryFailed)
	}

	resp := SummaryResponse{
		Summary:     text,
		ItemCount:   len(top),
		Country:     snap.Country,
		Category:    snap.Category,
		Window:      snap.Window,
		GeneratedAt: snap.CreatedAt,
	}

	return h.writeJSON(w, http.StatusOK, resp)
}

// streamSummary emits the narrative as SSE data events. Headers go out
// lazily with the first chunk so a failure before any output can still
// surface as a JSON error.
func (h *Handler) streamSummary(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, req llm.SummaryRequest) int {
	flusher, canFlush := w.(http.Flusher)
	wrote := false

	emit := func(chunk string) error {
		if chunk == "" {
			return nil
		}

		if !wrote {
			writeStreamHeaders(w)

			wrote = true
		}

		if err := writeSSEChunk(w, chunk); err != nil {
			return err
		}

		if canFlush {
			flusher.Flush()
		}

		return nil
	}

	if err := h.summarizer.StreamTrendSummary(r.Context(), req, emit); err != nil {
		if !wrote {
			logger.Error().Err(err).Msg("Summary stream failed")

			return h.writeError(w, http.StatusBadGateway, errMsgSummaryFailed)
		}

		// Status already on the wire; all we can do is stop.
		logger.Error().Err(err).Msg("Summary stream interrupted")

		return http.StatusOK
	}

	if !wrote {
		writeStreamHeaders(w)
	}

	_, _ = fmt.Fprint(w, sseDone)

	if canFlush {
		flusher.Flush()
	}

	return http.StatusOK
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) int {
	if h.snapshots == nil {
		return h.writeError(w, http.StatusNotFound, errMsgHistoryDisabled)
	}

	query, _ := h.parseTrendsQuery(r)
	logger := h.requestLogger(r, routeHistory, query, sourceSnapshot)
	limit := parseLimit(r, defaultHistoryLimit, maxHistoryLimit)

	snaps, err := h.snapshots.ListSnapshots(r.Context(), query.Country, query.Category, query.Window, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Snapshot history load failed")

		return h.writeError(w, http.StatusInternalServerError, errMsgHistoryFailed)
	}

	metas := make([]SnapshotMeta, 0, len(snaps))
	for _, snap := range snaps {
		metas = append(metas, SnapshotMeta{
			ID:             snap.ID,
			ItemCount:      snap.ItemCount,
			PlatformCounts: snap.PlatformCounts,
			CreatedAt:      snap.CreatedAt,
		})
	}

	resp := HistoryResponse{
		Snapshots: metas,
		Country:   query.Country,
		Category:  query.Category,
		Window:    query.Window,
	}

	return h.writeJSON(w, http.StatusOK, resp)
}

// resolveSnapshot loads the batch to serve, fresh or stored. A nil
// snapshot means the request is already answered by (status, message).
func (h *Handler) resolveSnapshot(ctx context.Context, logger *zerolog.Logger, query ingest.Query, source string) (*domain.Snapshot, int, string) {
	if source == sourceSnapshot {
		if h.snapshots == nil {
			return nil, http.StatusNotFound, errMsgNoSnapshot
		}

		snap, err := h.snapshots.LatestSnapshot(ctx, query.Country, query.Category, query.Window)
		if err != nil {
			if errors.Is(err, db.ErrNoSnapshot) {
				return nil, http.StatusNotFound, errMsgNoSnapshot
			}

			logger.Error().Err(err).Msg("Snapshot load failed")

			return nil, http.StatusInternalServerError, errMsgSnapshotLoad
		}

		return snap, 0, ""
	}

	snap, err := h.aggregator.Run(ctx, query)
	if err != nil {
		logger.Error().Err(err).Msg("On-demand aggregation failed")

		return nil, http.StatusBadGateway, errMsgAggregation
	}

	return snap, 0, ""
}

// parseTrendsQuery reads the shared selection parameters. Enum values are
// parsed leniently: unknown categories, windows and platforms fall back to
// their defaults rather than erroring.
func (h *Handler) parseTrendsQuery(r *http.Request) (ingest.Query, string) {
	q := r.URL.Query()

	country := strings.ToUpper(strings.TrimSpace(q.Get("country")))
	if country == "" {
		country = defaultCountry
	}

	source := strings.ToLower(strings.TrimSpace(q.Get("source")))
	if source != sourceSnapshot {
		source = sourceFresh
	}

	return ingest.Query{
		Country:  country,
		Category: domain.ParseCategory(strings.TrimSpace(q.Get("category"))),
		Window:   domain.ParseTimeWindow(strings.TrimSpace(q.Get("window"))),
		Platform: domain.ParsePlatform(strings.TrimSpace(q.Get("platform"))),
		Limit:    h.cfg.TrendLimit,
	}, source
}

func (h *Handler) requestLogger(r *http.Request, route string, query ingest.Query, source string) zerolog.Logger {
	return h.logger.With().
		Str(logFieldRequestID, uuid.NewString()).
		Str(logFieldRoute, route).
		Str(logFieldCountry, query.Country).
		Str(logFieldCategory, string(query.Category)).
		Str(logFieldWindow, string(query.Window)).
		Str(logFieldSource, source).
		Str("remote", getClientIP(r)).
		Logger()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) int {
	w.Header().Set(contentTypeHeader, contentTypeJSON)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("write json failed")
	}

	return status
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) int {
	return h.writeJSON(w, status, map[string]string{"error": message})
}

func writeStreamHeaders(w http.ResponseWriter) {
	w.Header().Set(contentTypeHeader, contentTypeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
}

// writeSSEChunk frames one chunk as an SSE data event. Chunks are JSON
// encoded so embedded newlines cannot break the framing.
func writeSSEChunk(w http.ResponseWriter, chunk string) error {
	encoded, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("encode chunk: %w", err)
	}

	if _, err := fmt.Fprintf(w, sseDataPrefix, encoded); err != nil {
		return fmt.Errorf("write chunk: %w", err)
	}

	return nil
}

func parseLimit(r *http.Request, fallback, max int) int {
	val := strings.TrimSpace(r.URL.Query().Get("limit"))
	if val == "" {
		return fallback
	}

	num, err := strconv.Atoi(val)
	if err != nil || num <= 0 {
		return fallback
	}

	if num > max {
		return max
	}

	return num
}

func parseBool(val string) bool {
	val = strings.ToLower(strings.TrimSpace(val))

	return val == "true" || val == "1" || val == "yes"
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return r.RemoteAddr
}
