// Package api exposes the verified-claim corpus over HTTP. Reads go to the
// SQLite sink, submissions are published back onto the claim stream so they
// flow through the same verification path as every other claim.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truthstream/truthstream/internal/cache"
	"github.com/truthstream/truthstream/internal/model"
	"github.com/truthstream/truthstream/internal/sink"
	"github.com/truthstream/truthstream/internal/validate"
)

// Publisher is the stream surface submissions are written to.
type Publisher interface {
	Publish(ctx context.Context, claim model.RawClaim) error
}

// Handler is the HTTP handler for all /api/* endpoints.
// It reads verified claims from the sink and returns JSON responses.
type Handler struct {
	store     *sink.Store
	publisher Publisher
	cache     cache.Cache
	logger    *zap.SugaredLogger
	mux       *http.ServeMux
	pageSize  int
	cacheTTL  time.Duration
}

// New creates a Handler wired to the given sink and publisher and registers
// all routes. publisher may be nil, in which case POST /api/claims is
// rejected with 503.
func New(store *sink.Store, publisher Publisher, cfg model.APIConfig, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Second
	}

	h := &Handler{
		store:     store,
		publisher: publisher,
		cache:     cache.NewMemoryCache(cacheTTL, time.Minute),
		logger:    logger,
		mux:       http.NewServeMux(),
		pageSize:  pageSize,
		cacheTTL:  cacheTTL,
	}

	h.mux.HandleFunc("/health", h.health)
	h.mux.HandleFunc("/api/claims", h.claims)
	h.mux.HandleFunc("/api/claims/", h.claimsSubtree) // subtree - search, category, verified, {id}
	h.mux.HandleFunc("/api/stats", h.stats)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// envelope is the response shape shared by all endpoints.
type envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
	Error      string      `json:"error,omitempty"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// submission is the POST /api/claims request body.
type submission struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Source   string `json:"source"`
}

// accepted is the POST /api/claims response body.
type accepted struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// --- route handlers ---------------------------------------------------------

// health returns GET /health - liveness plus a sink reachability check.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := "ok"
	code := http.StatusOK
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	jsonResp(w, code, envelope{Success: code == http.StatusOK, Data: map[string]string{"status": status}})
}

// claims dispatches GET (list) and POST (submit) on /api/claims.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listClaims(w, r)
	case http.MethodPost:
		h.submitClaim(w, r)
	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listClaims returns GET /api/claims - paginated claims, newest first by
// default. sortBy accepts timestamp, credibility, or processed_at.
func (h *Handler) listClaims(w http.ResponseWriter, r *http.Request) {
	page, limit := h.pageParams(r)
	sortBy := r.URL.Query().Get("sortBy")
	if sortBy == "" {
		sortBy = "timestamp"
	}
	order := r.URL.Query().Get("order")
	if order == "" {
		order = "desc"
	}

	result, err := h.store.List(r.Context(), sortBy, order, (page-1)*limit, limit)
	if err != nil {
		h.serverErr(w, "list claims", err)
		return
	}
	h.page(w, result, page, limit)
}

// claimsSubtree routes /api/claims/search, /api/claims/category/{category},
// /api/claims/verified/{status}, and /api/claims/{id}.
func (h *Handler) claimsSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/claims/")
	switch {
	case rest == "":
		h.listClaims(w, r)
	case rest == "search":
		h.searchClaims(w, r)
	case strings.HasPrefix(rest, "category/"):
		h.claimsByCategory(w, r, strings.TrimPrefix(rest, "category/"))
	case strings.HasPrefix(rest, "verified/"):
		h.claimsByVerified(w, r, strings.TrimPrefix(rest, "verified/"))
	default:
		h.getClaim(w, r, rest)
	}
}

// searchClaims returns GET /api/claims/search?q= - full-text matches ranked
// with text hits above category and source hits.
func (h *Handler) searchClaims(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		jsonErr(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	page, limit := h.pageParams(r)

	result, err := h.store.Search(r.Context(), query, (page-1)*limit, limit)
	if err != nil {
		h.serverErr(w, "search claims", err)
		return
	}
	h.page(w, result, page, limit)
}

// getClaim returns GET /api/claims/{id} - a single verified claim. Lookups
// are read-through cached; the corpus is append-mostly so a short TTL is
// enough to keep reprocessed claims fresh.
func (h *Handler) getClaim(w http.ResponseWriter, r *http.Request, id string) {
	key := cache.ClaimKey(id)
	if body, found := h.cache.Get(key); found {
		writeRaw(w, http.StatusOK, body)
		return
	}

	claim, err := h.store.GetByID(r.Context(), id)
	if errors.Is(err, sink.ErrNotFound) {
		jsonErr(w, http.StatusNotFound, "claim not found")
		return
	}
	if err != nil {
		h.serverErr(w, "get claim", err)
		return
	}

	body, err := json.Marshal(envelope{Success: true, Data: claim})
	if err != nil {
		h.serverErr(w, "encode claim", err)
		return
	}
	h.cache.Set(key, body, h.cacheTTL)
	writeRaw(w, http.StatusOK, body)
}

// claimsByCategory returns GET /api/claims/category/{category}.
func (h *Handler) claimsByCategory(w http.ResponseWriter, r *http.Request, category string) {
	if category == "" {
		jsonErr(w, http.StatusBadRequest, "category is required")
		return
	}
	page, limit := h.pageParams(r)

	result, err := h.store.ByCategory(r.Context(), category, (page-1)*limit, limit)
	if err != nil {
		h.serverErr(w, "claims by category", err)
		return
	}
	h.page(w, result, page, limit)
}

// claimsByVerified returns GET /api/claims/verified/{status} where status is
// "true" or "false".
func (h *Handler) claimsByVerified(w http.ResponseWriter, r *http.Request, status string) {
	verified, err := strconv.ParseBool(status)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, "status must be true or false")
		return
	}
	page, limit := h.pageParams(r)

	result, err := h.store.ByVerified(r.Context(), verified, (page-1)*limit, limit)
	if err != nil {
		h.serverErr(w, "claims by verified", err)
		return
	}
	h.page(w, result, page, limit)
}

// stats returns GET /api/stats - corpus-wide aggregates, read-through cached.
func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	key := cache.QueryKey("stats")
	if body, found := h.cache.Get(key); found {
		writeRaw(w, http.StatusOK, body)
		return
	}

	st, err := h.store.Stats(r.Context())
	if err != nil {
		h.serverErr(w, "stats", err)
		return
	}

	body, err := json.Marshal(envelope{Success: true, Data: st})
	if err != nil {
		h.serverErr(w, "encode stats", err)
		return
	}
	h.cache.Set(key, body, h.cacheTTL)
	writeRaw(w, http.StatusOK, body)
}

// submitClaim handles POST /api/claims - validates the submission and
// publishes it onto the claim stream. The claim only becomes readable once
// the pipeline has verified and persisted it.
func (h *Handler) submitClaim(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		jsonErr(w, http.StatusServiceUnavailable, "submissions are not accepted by this instance")
		return
	}

	var sub submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := validate.Submission(sub.Text, sub.Category, sub.Source); err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}

	claim := model.RawClaim{
		ID:            uuid.NewString(),
		Text:          strings.TrimSpace(sub.Text),
		Category:      sub.Category,
		Source:        strings.TrimSpace(sub.Source),
		Timestamp:     time.Now().UTC(),
		UserSubmitted: true,
	}

	if err := h.publisher.Publish(r.Context(), claim); err != nil {
		h.serverErr(w, "publish submission", err)
		return
	}

	h.logger.Infow("claim submitted", "id", claim.ID, "category", claim.Category)
	jsonResp(w, http.StatusAccepted, envelope{
		Success: true,
		Data:    accepted{ID: claim.ID, Message: "claim accepted for verification"},
	})
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) pageParams(r *http.Request) (page, limit int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	limit = h.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}

func (h *Handler) page(w http.ResponseWriter, result sink.Page, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = (result.Total + limit - 1) / limit
	}
	jsonResp(w, http.StatusOK, envelope{
		Success:    true,
		Data:       result.Claims,
		Pagination: &pagination{Page: page, Limit: limit, Total: result.Total, Pages: pages},
	})
}

func (h *Handler) serverErr(w http.ResponseWriter, op string, err error) {
	h.logger.Errorw(op, "error", err)
	jsonErr(w, http.StatusInternalServerError, "internal error")
}

func jsonResp(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeRaw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(body) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, envelope{Success: false, Error: msg})
}
