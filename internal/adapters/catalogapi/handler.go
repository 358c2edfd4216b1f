// Package catalogapi provides HTTP access to the catalog view, annotation,
// and export operations.
package catalogapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"catalogcore/internal/adapters/exportapi"
	"catalogcore/internal/core"
	"catalogcore/pkg/domain"
)

// Catalog is the slice of the catalog service the handler depends on.
type Catalog interface {
	View(ctx context.Context, filter domain.FilterState, query string) domain.VisibleView
	Options() domain.Options
	LoadState() core.LoadState
	Feature(id string) (domain.Feature, bool)
	OpenAnnotation(id string, mode core.AnnotationMode) error
	SaveAnnotation(ctx context.Context, text string) (core.AnnotationResult, error)
	DeleteAnnotation(ctx context.Context) (core.AnnotationResult, error)
	CancelAnnotation()
}

// ExportScheduler queues export requests and exposes their status.
type ExportScheduler interface {
	EnqueueExport(ctx context.Context, input exportapi.ExportInput) (exportapi.ExportRecord, error)
	GetExport(id string) (exportapi.ExportRecord, bool)
}

// VisitReporter forwards presentation-layer visit events. Best effort: the
// handler never surfaces reporter failures to clients.
type VisitReporter interface {
	ReportVisit(ctx context.Context, visitorID string)
}

// Handler routes catalog API requests.
type Handler struct {
	Catalog Catalog
	Exports ExportScheduler
	Visits  VisitReporter
	Logger  *log.Logger
}

// NewHandler constructs a catalog HTTP handler.
func NewHandler(c Catalog, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{Catalog: c, Logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Catalog == nil {
		writeError(w, http.StatusInternalServerError, "catalog not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/api/v1/catalog/view":
		h.handleView(w, r)
	case r.Method == http.MethodGet && path == "/api/v1/catalog/options":
		h.handleOptions(w)
	case r.Method == http.MethodGet && path == "/api/v1/catalog/state":
		writeJSON(w, http.StatusOK, map[string]any{"state": h.Catalog.LoadState()})
	case strings.HasPrefix(path, "/api/v1/catalog/features/"):
		h.handleFeature(w, r, strings.TrimPrefix(path, "/api/v1/catalog/features/"))
	case strings.HasPrefix(path, "/api/v1/catalog/exports"):
		if h.Exports == nil {
			writeError(w, http.StatusNotFound, "exports not enabled")
			return
		}
		h.handleExports(w, r, path)
	case r.Method == http.MethodPost && path == "/api/v1/catalog/visits":
		h.handleVisit(w, r)
	default:
		writeError(w, http.StatusNotFound, "unknown route")
	}
}

// filterFromQuery maps URL query parameters onto a filter state. Unknown
// parameters are ignored; repeat the competitor parameter to compare several.
func filterFromQuery(r *http.Request) (domain.FilterState, string) {
	q := r.URL.Query()
	filter := domain.FilterState{
		Vertical:         q.Get("vertical"),
		Country:          q.Get("country"),
		Area:             q.Get("area"),
		BusinessBenefits: q.Get("business_benefits"),
		UniqueZenoti:     strings.EqualFold(q.Get("unique_zenoti"), "true"),
	}
	for _, competitor := range q["competitor"] {
		if competitor = strings.TrimSpace(competitor); competitor != "" {
			filter.Competitors = append(filter.Competitors, competitor)
		}
	}
	return filter, q.Get("q")
}

func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	filter, query := filterFromQuery(r)
	view := h.Catalog.View(r.Context(), filter, query)
	writeJSON(w, http.StatusOK, map[string]any{"view": view, "filter": filter, "query": query})
}

func (h *Handler) handleOptions(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"options": h.Catalog.Options()})
}

func (h *Handler) handleFeature(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "feature id required")
		return
	}

	if len(segments) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		feature, ok := h.Catalog.Feature(id)
		if !ok {
			writeError(w, http.StatusNotFound, "feature not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"feature": feature})
		return
	}

	if len(segments) != 2 || segments[1] != "note" {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handleNoteSave(w, r, id)
	case http.MethodDelete:
		h.handleNoteDelete(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type noteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleNoteSave(w http.ResponseWriter, r *http.Request, id string) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid note payload")
		return
	}

	feature, ok := h.Catalog.Feature(id)
	if !ok {
		writeError(w, http.StatusNotFound, "feature not found")
		return
	}
	mode := core.ModeCreate
	if feature.Note != "" {
		mode = core.ModeEdit
	}
	if err := h.Catalog.OpenAnnotation(id, mode); err != nil {
		h.writeDomainError(w, err)
		return
	}
	result, err := h.Catalog.SaveAnnotation(r.Context(), req.Text)
	if err != nil {
		h.Catalog.CancelAnnotation()
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feature": result.Record, "outcome": result.Outcome})
}

func (h *Handler) handleNoteDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.Catalog.OpenAnnotation(id, core.ModeEdit); err != nil {
		h.writeDomainError(w, err)
		return
	}
	result, err := h.Catalog.DeleteAnnotation(r.Context())
	if err != nil {
		h.Catalog.CancelAnnotation()
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"feature": result.Record, "outcome": result.Outcome})
}

type exportRequest struct {
	FeatureIDs  []string           `json:"feature_ids"`
	Filter      domain.FilterState `json:"filter"`
	Formats     []string           `json:"formats"`
	RequestedBy string             `json:"requested_by"`
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, path string) {
	if path == "/api/v1/catalog/exports" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.handleExportCreate(w, r)
		return
	}

	if !strings.HasPrefix(path, "/api/v1/catalog/exports/") {
		writeError(w, http.StatusNotFound, "unknown route")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := strings.TrimPrefix(path, "/api/v1/catalog/exports/")
	if id == "" {
		writeError(w, http.StatusNotFound, "export id required")
		return
	}
	record, ok := h.Exports.GetExport(id)
	if !ok {
		writeError(w, http.StatusNotFound, "export not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"export": record})
}

func (h *Handler) handleExportCreate(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid export payload")
		return
	}

	formats := make([]exportapi.Format, 0, len(req.Formats))
	for _, f := range req.Formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "csv":
			formats = append(formats, exportapi.FormatCSV)
		case "json":
			formats = append(formats, exportapi.FormatJSON)
		default:
			writeError(w, http.StatusBadRequest, "unsupported export format")
			return
		}
	}

	record, err := h.Exports.EnqueueExport(r.Context(), exportapi.ExportInput{
		FeatureIDs:  req.FeatureIDs,
		Filter:      req.Filter,
		Formats:     formats,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.Logger.Info("export queued", "export_id", record.ID, "rows", len(record.FeatureIDs))
	writeJSON(w, http.StatusAccepted, map[string]any{"export": record})
}

type visitRequest struct {
	VisitorID string `json:"visitor_id"`
}

func (h *Handler) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid visit payload")
		return
	}
	if h.Visits != nil {
		h.Visits.ReportVisit(r.Context(), req.VisitorID)
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var notFound domain.ErrNotFound
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoSession):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
