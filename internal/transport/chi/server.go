package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/richdex/internal/domain"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/record"
	logpkg "github.com/kailas-cloud/richdex/internal/logger"
	documentuc "github.com/kailas-cloud/richdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/richdex/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the per-collection query surface over HTTP.
type Server struct {
	documents     map[string]*documentuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server over the given collection
// services, keyed by collection name.
func NewServer(documents map[string]*documentuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		documents: documents,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrFilterNotFound, http.StatusNotFound, codeFilterNotFound),
		sentinelHandler(domain.ErrFilterUnordered, http.StatusBadRequest, codeFilterUnordered),
		sentinelHandler(domain.ErrMissingID, http.StatusBadRequest, codeMissingID),
		sentinelHandler(domain.ErrFieldNotIndexed, http.StatusBadRequest, codeNotIndexed),
		sentinelHandler(domain.ErrTextRange, http.StatusBadRequest, codeTextRange),
		sentinelHandler(domain.ErrKindMismatch, http.StatusBadRequest, codeKindMismatch),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, codeBadRequest),
	}
	return s
}

// Routes registers every handler on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1/collections/{collection}", func(r chi.Router) {
		r.Post("/documents", s.insertDocument)
		r.Post("/documents/batch", s.insertBatch)
		r.Post("/documents/batch-delete", s.batchDelete)
		r.Get("/documents/{id}", s.getDocument)
		r.Put("/documents/{id}", s.upsertDocument)
		r.Delete("/documents/{id}", s.deleteDocument)
		r.Get("/query", s.query)
		r.Get("/filters/{name}", s.filterQuery)
	})
	r.Get("/healthz", s.healthCheck)
	r.Get("/metrics", s.metrics)
}

// insertDocument handles POST /v1/collections/{collection}/documents.
func (s *Server) insertDocument(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := docFromMap(svc.Declaration(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	stored, err := svc.Insert(r.Context(), rec)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, docToMap(stored))
}

// insertBatch handles POST /v1/collections/{collection}/documents/batch.
func (s *Server) insertBatch(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	var body struct {
		Documents []map[string]any `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	recs := make([]record.Record, 0, len(body.Documents))
	for _, doc := range body.Documents {
		rec, err := docFromMap(svc.Declaration(), doc)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		recs = append(recs, rec)
	}

	stored, err := svc.InsertMany(r.Context(), recs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, docsResponse(stored))
}

// getDocument handles GET /v1/collections/{collection}/documents/{id}.
func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	rec, err := svc.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docToMap(rec))
}

// upsertDocument handles PUT /v1/collections/{collection}/documents/{id}.
func (s *Server) upsertDocument(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := docFromMap(svc.Declaration(), body)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	id, err := idValue(svc.Declaration(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	stored, err := svc.Upsert(r.Context(), rec.WithID(id))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docToMap(stored))
}

// deleteDocument handles DELETE /v1/collections/{collection}/documents/{id}.
func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	if err := svc.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// batchDelete handles POST /v1/collections/{collection}/documents/batch-delete.
func (s *Server) batchDelete(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := svc.RemoveMany(r.Context(), body.IDs); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// query handles GET /v1/collections/{collection}/query with either
// field+value (equality) or field+min+max (range) parameters.
func (s *Server) query(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	fieldName := q.Get("field")
	if fieldName == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "field parameter is required")
		return
	}

	kind, declared := svc.Declaration().Kind(fieldName)
	if !declared {
		writeError(w, http.StatusBadRequest, codeNotIndexed, "field "+fieldName+" is not declared")
		return
	}

	switch {
	case q.Has("value"):
		v, err := parseParamValue(kind, q.Get("value"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		recs, err := svc.FindBy(r.Context(), fieldName, v)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docsResponse(recs))

	case q.Has("min") && q.Has("max"):
		min, err := parseParamValue(kind, q.Get("min"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		max, err := parseParamValue(kind, q.Get("max"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return
		}
		recs, err := svc.FindRangeBy(r.Context(), fieldName, min, max)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docsResponse(recs))

	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, "either value or min and max parameters are required")
	}
}

// filterQuery handles GET /v1/collections/{collection}/filters/{name},
// optionally restricted by min+max over the filter's order field.
func (s *Server) filterQuery(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "name")
	q := r.URL.Query()

	if !q.Has("min") && !q.Has("max") {
		recs, err := svc.FindByFilter(r.Context(), name)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, docsResponse(recs))
		return
	}

	def, ok := svc.Declaration().Filter(name)
	if !ok {
		writeError(w, http.StatusNotFound, codeFilterNotFound, "filter "+name+" is not declared")
		return
	}
	if !def.Ordered() {
		writeError(w, http.StatusBadRequest, codeFilterUnordered, "filter "+name+" has no order field")
		return
	}

	kind, _ := svc.Declaration().Kind(def.OrderField())
	min, err := parseParamValue(kind, q.Get("min"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	max, err := parseParamValue(kind, q.Get("max"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	recs, err := svc.FindRangeByFilter(r.Context(), name, min, max)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docsResponse(recs))
}

// healthCheck handles GET /healthz.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// metrics handles GET /metrics.
func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// service resolves the collection service from the route, writing a 404
// when the collection is not declared.
func (s *Server) service(w http.ResponseWriter, r *http.Request) (*documentuc.Service, bool) {
	name := chi.URLParam(r, "collection")
	svc, ok := s.documents[name]
	if !ok {
		writeError(w, http.StatusNotFound, codeCollectionMiss, "collection "+name+" is not declared")
		return nil, false
	}
	return svc, true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	logpkg.FromContext(r.Context(), s.logger).Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func docsResponse(recs []record.Record) map[string]any {
	docs := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, docToMap(rec))
	}
	return map[string]any{"documents": docs}
}

// idValue types a path id according to the collection's id kind.
func idValue(decl collection.Declaration, raw string) (record.Value, error) {
	kind, _ := decl.Kind(record.IDField)
	if kind == record.KindNumeric {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return record.Value{}, errors.New("id must be numeric for auto-id collections")
		}
		return record.Number(n), nil
	}
	return record.Text(raw), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrFilterNotFound,
		domain.ErrFilterUnordered,
		domain.ErrMissingID,
		domain.ErrFieldNotIndexed,
		domain.ErrTextRange,
		domain.ErrKindMismatch,
		domain.ErrInvalidSchema,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}
