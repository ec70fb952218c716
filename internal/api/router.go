// Package api serves the journal over HTTP.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/internal/observability"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

// MaxImportBytes bounds an uploaded export.
const MaxImportBytes = 10 << 20

type RouterDeps struct {
	Store    journal.Store
	Importer *importer.Importer
	Table    market.Table
	Location *time.Location // calendar days
	Metrics  *observability.Metrics
}

type handler struct {
	d RouterDeps

	// serializes read-modify-write cycles on the store
	mu sync.Mutex
}

func NewRouter(d RouterDeps) http.Handler {
	if d.Location == nil {
		d.Location = time.Local
	}
	if len(d.Table) == 0 {
		d.Table = market.DefaultTable
	}
	h := &handler{d: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/imports", h.importCSV)
		r.Route("/trades", func(r chi.Router) {
			r.Get("/", h.listTrades)
			r.Post("/recalculate", h.recalculate)
			r.Get("/{id}", h.getTrade)
			r.Delete("/{id}", h.deleteTrade)
			r.Patch("/{id}", h.annotateTrade)
		})
		r.Get("/stats", h.stats)
		r.Get("/calendar", h.calendar)
	})

	return r
}

func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.d.Metrics.RecordHTTP(r.Method, route, strconv.Itoa(status), time.Since(start).Seconds())
	})
}
