// Package stubapi is a development server that implements the admin REST
// API on an in-memory dataset. It backs `adminctl stub-server` and the
// HTTP-level tests of the api and hook packages.
package stubapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/rileyhilliard/adminctl/internal/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a Bearer token on every request.
	Token string
	// FailEvery fails every Nth /metrics request with 503. Zero disables.
	FailEvery int
	// Latency delays every response.
	Latency time.Duration
	// Logger receives request logs. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Server serves the admin API from a Store.
type Server struct {
	store        *Store
	opts         Options
	metricsCalls atomic.Int64
}

// New creates a Server over store.
func New(store *Store, opts Options) *Server {
	return &Server{store: store, opts: opts}
}

// MetricsCalls reports how many /metrics requests have been received.
func (s *Server) MetricsCalls() int64 {
	return s.metricsCalls.Load()
}

// Router returns the HTTP handler, mounted at the root. Callers that want
// the API under a prefix mount it with chi's Mount.
func (s *Server) Router() chi.Router {
	log := zerolog.Nop()
	if s.opts.Logger != nil {
		log = *s.opts.Logger
	}

	mux := chi.NewRouter()

	// Middleware
	mux.Use(middleware.Recoverer)

	// Logging-related middleware
	mux.Use(hlog.NewHandler(log))
	mux.Use(hlog.RequestIDHandler("id", "request-id"))
	mux.Use(hlog.URLHandler("url"))
	mux.Use(hlog.MethodHandler("method"))
	mux.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Debug().
			Int("status", status).
			Dur("duration", duration).
			Msg("Request Processed")
	}))

	mux.Use(s.latency)
	if s.opts.Token != "" {
		mux.Use(s.auth)
	}

	mux.Get("/metrics", s.metrics)

	mux.Route("/users", func(sub chi.Router) {
		sub.Get("/", s.listUsers)
		sub.Post("/bulk", s.bulk(api.ResourceUsers))
		sub.Patch("/{id}", s.updateUser)
		sub.Delete("/{id}", s.deleteUser)
	})

	mux.Route("/organizations", func(sub chi.Router) {
		sub.Get("/", s.listOrganizations)
		sub.Post("/bulk", s.bulk(api.ResourceOrganizations))
		sub.Patch("/{id}", s.updateOrganization)
		sub.Delete("/{id}", s.deleteOrganization)
	})

	return mux
}

func (s *Server) latency(next http.Handler) http.Handler {
	if s.opts.Latency <= 0 {
		return next
	}
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		timer := time.NewTimer(s.opts.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
			next.ServeHTTP(rw, r)
		case <-r.Context().Done():
		}
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token != s.opts.Token {
			writeError(rw, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(rw, r)
	})
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, map[string]any{"success": false, "error": msg})
}

func writeStoreError(rw http.ResponseWriter, r *http.Request, resource string, err error) {
	var fieldErr *FieldError
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(rw, http.StatusNotFound, singular(resource)+" not found")
	case errors.As(err, &fieldErr):
		writeError(rw, http.StatusBadRequest, fieldErr.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Store operation failed")
		writeError(rw, http.StatusInternalServerError, "internal error")
	}
}

func singular(resource string) string {
	if resource == api.ResourceOrganizations {
		return "organization"
	}
	return "user"
}

func (s *Server) metrics(rw http.ResponseWriter, r *http.Request) {
	n := s.metricsCalls.Add(1)
	if s.opts.FailEvery > 0 && n%int64(s.opts.FailEvery) == 0 {
		hlog.FromRequest(r).Info().Int64("call", n).Msg("Injecting metrics failure")
		writeError(rw, http.StatusServiceUnavailable, "metrics temporarily unavailable")
		return
	}

	writeJSON(rw, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]any{"metrics": s.store.Metrics()},
	})
}

// parseQuery reads pagination, sort and the allowed filters from r.
func parseQuery(r *http.Request, filterKeys ...string) (query, error) {
	values := r.URL.Query()
	q := query{
		Page:    1,
		Limit:   defaultPageSize,
		Sort:    values.Get("sort"),
		Order:   values.Get("order"),
		Filters: api.Filters{},
	}

	if v := values.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, &FieldError{Field: "page", Reason: "must be a positive integer"}
		}
		q.Page = page
	}
	if v := values.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, &FieldError{Field: "limit", Reason: "must be a positive integer"}
		}
		q.Limit = min(limit, maxPageSize)
	}
	if q.Order != "" && q.Order != api.OrderAsc && q.Order != api.OrderDesc {
		return q, &FieldError{Field: "order", Reason: "must be asc or desc"}
	}
	for _, key := range filterKeys {
		if v := values.Get(key); v != "" {
			q.Filters[key] = v
		}
	}
	return q, nil
}

func writeList(rw http.ResponseWriter, q query, data any, total int) {
	writeJSON(rw, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
		"metadata": map[string]int{
			"total": total,
			"page":  q.Page,
			"limit": q.Limit,
		},
	})
}

func (s *Server) listUsers(rw http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, "search", "status", "role", "organizationId")
	if err != nil {
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	}
	users, total := s.store.Users(q)
	writeList(rw, q, users, total)
}

func (s *Server) listOrganizations(rw http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r, "search", "status", "plan")
	if err != nil {
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	}
	orgs, total := s.store.Organizations(q)
	writeList(rw, q, orgs, total)
}

func decodeBody(rw http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var fields map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 1<<20)).Decode(&fields); err != nil {
		writeError(rw, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if len(fields) == 0 {
		writeError(rw, http.StatusBadRequest, "empty update")
		return nil, false
	}
	return fields, true
}

func (s *Server) updateUser(rw http.ResponseWriter, r *http.Request) {
	fields, ok := decodeBody(rw, r)
	if !ok {
		return
	}
	user, err := s.store.UpdateUser(chi.URLParam(r, "id"), fields)
	if err != nil {
		writeStoreError(rw, r, api.ResourceUsers, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (s *Server) updateOrganization(rw http.ResponseWriter, r *http.Request) {
	fields, ok := decodeBody(rw, r)
	if !ok {
		return
	}
	org, err := s.store.UpdateOrganization(chi.URLParam(r, "id"), fields)
	if err != nil {
		writeStoreError(rw, r, api.ResourceOrganizations, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"success": true, "organization": org})
}

func (s *Server) deleteUser(rw http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(chi.URLParam(r, "id")); err != nil {
		writeStoreError(rw, r, api.ResourceUsers, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) deleteOrganization(rw http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteOrganization(chi.URLParam(r, "id")); err != nil {
		writeStoreError(rw, r, api.ResourceOrganizations, err)
		return
	}
	writeJSON(rw, http.StatusOK, map[string]any{"success": true})
}

type bulkRequest struct {
	Action          string   `json:"action"`
	UserIDs         []string `json:"userIds"`
	OrganizationIDs []string `json:"organizationIds"`
	Reason          string   `json:"reason"`
}

func (s *Server) bulk(resource string) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := json.NewDecoder(http.MaxBytesReader(rw, r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(rw, http.StatusBadRequest, "invalid JSON body")
			return
		}
		ids := req.UserIDs
		if resource == api.ResourceOrganizations {
			ids = req.OrganizationIDs
		}
		if len(ids) == 0 {
			writeError(rw, http.StatusBadRequest, api.BulkIDKey(resource)+" is required")
			return
		}

		var apply func(id string) error
		switch req.Action {
		case api.BulkSuspend, api.BulkActivate:
			fields := map[string]any{req.Action: true}
			if req.Reason != "" {
				fields["reason"] = req.Reason
			}
			apply = func(id string) error {
				if resource == api.ResourceOrganizations {
					_, err := s.store.UpdateOrganization(id, fields)
					return err
				}
				_, err := s.store.UpdateUser(id, fields)
				return err
			}
		case api.BulkDelete:
			apply = s.store.DeleteUser
			if resource == api.ResourceOrganizations {
				apply = s.store.DeleteOrganization
			}
		default:
			writeError(rw, http.StatusBadRequest, "unknown bulk action "+strconv.Quote(req.Action))
			return
		}

		result := api.BulkResult{}
		for _, id := range ids {
			if err := apply(id); err != nil {
				result.Failed = append(result.Failed, id)
				continue
			}
			result.Affected++
		}

		hlog.FromRequest(r).Info().
			Str("action", req.Action).
			Str("resource", resource).
			Int("affected", result.Affected).
			Int("failed", len(result.Failed)).
			Msg("Bulk action applied")

		writeJSON(rw, http.StatusOK, map[string]any{"success": true, "data": result})
	}
}
