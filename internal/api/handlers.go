package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rustyeddy/tradejournal/internal/logger"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/stats"
	"github.com/rustyeddy/tradejournal/trade"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.ErrorWithErr(r.Context(), "request failed", err, "path", r.URL.Path)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func storeStatus(err error) int {
	if errors.Is(err, journal.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (h *handler) importCSV(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	defer body.Close()

	h.mu.Lock()
	res, err := h.d.Importer.Import(r.Context(), body)
	h.mu.Unlock()

	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// listTrades answers ?account= and ?date=YYYY-MM-DD (exit day in the
// configured location).
func (h *handler) listTrades(w http.ResponseWriter, r *http.Request) {
	var (
		trades []trade.Trade
		err    error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		day, perr := time.ParseInLocation(time.DateOnly, date, h.d.Location)
		if perr != nil {
			writeError(w, r, http.StatusBadRequest, perr)
			return
		}
		trades, err = journal.ClosedBetween(r.Context(), h.d.Store, day, day.AddDate(0, 0, 1))
	} else {
		trades, err = h.d.Store.LoadTrades(r.Context())
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	trades = stats.FilterAccount(trades, r.URL.Query().Get("account"))
	if trades == nil {
		trades = []trade.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (h *handler) getTrade(w http.ResponseWriter, r *http.Request) {
	t, err := journal.Get(r.Context(), h.d.Store, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) deleteTrade(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	err := journal.Delete(r.Context(), h.d.Store, chi.URLParam(r, "id"))
	h.mu.Unlock()

	if err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// metaPatch holds the journal fields a PATCH may change. Absent fields keep
// their stored value.
type metaPatch struct {
	Playbook         *string   `json:"playbook"`
	EntryRating      *int      `json:"entryRating"`
	ExitRating       *int      `json:"exitRating"`
	DisciplineRating *int      `json:"disciplineRating"`
	Tags             *[]string `json:"tags"`
	Mistakes         *[]string `json:"mistakes"`
	Notes            *string   `json:"notes"`
	Screenshot       *string   `json:"screenshot"`
}

func (p metaPatch) apply(m trade.Meta) trade.Meta {
	if p.Playbook != nil {
		m.Playbook = *p.Playbook
	}
	if p.EntryRating != nil {
		m.EntryRating = *p.EntryRating
	}
	if p.ExitRating != nil {
		m.ExitRating = *p.ExitRating
	}
	if p.DisciplineRating != nil {
		m.DisciplineRating = *p.DisciplineRating
	}
	if p.Tags != nil {
		m.Tags = *p.Tags
	}
	if p.Mistakes != nil {
		m.Mistakes = *p.Mistakes
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	if p.Screenshot != nil {
		m.Screenshot = *p.Screenshot
	}
	return m
}

func (h *handler) annotateTrade(w http.ResponseWriter, r *http.Request) {
	var p metaPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	tradeID := chi.URLParam(r, "id")

	h.mu.Lock()
	defer h.mu.Unlock()

	cur, err := journal.Get(r.Context(), h.d.Store, tradeID)
	if err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	updated, err := journal.Annotate(r.Context(), h.d.Store, tradeID, p.apply(cur.Meta))
	if err != nil {
		writeError(w, r, storeStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

type recalcResponse struct {
	Total       int               `json:"total"`
	Changed     int               `json:"changed"`
	Diagnostics trade.Diagnostics `json:"diagnostics"`
}

func (h *handler) recalculate(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	res, err := journal.Recalculate(r.Context(), h.d.Store, h.d.Table)
	h.mu.Unlock()

	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	for _, d := range res.Diagnostics {
		logger.Warn(r.Context(), d.Message, "kind", string(d.Kind), "symbol", d.Symbol)
	}
	writeJSON(w, http.StatusOK, recalcResponse{Total: res.Total, Changed: res.Changed, Diagnostics: res.Diagnostics})
}

type statsResponse struct {
	Account  string        `json:"account"`
	Accounts []string      `json:"accounts"`
	Summary  stats.Summary `json:"summary"`
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	trades, err := h.d.Store.LoadTrades(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	h.d.Metrics.SetStoredTrades(len(trades))

	account := r.URL.Query().Get("account")
	if account == "" {
		account = stats.AllAccounts
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Account:  account,
		Accounts: stats.Accounts(trades),
		Summary:  stats.Summarize(stats.FilterAccount(trades, account)),
	})
}

func (h *handler) calendar(w http.ResponseWriter, r *http.Request) {
	trades, err := h.d.Store.LoadTrades(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	days := stats.Calendar(stats.FilterAccount(trades, r.URL.Query().Get("account")), h.d.Location)
	if month := r.URL.Query().Get("month"); month != "" {
		y, m, err := stats.ParseMonth(month)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		days = stats.Month(days, y, m)
	}
	if days == nil {
		days = []stats.Day{}
	}
	writeJSON(w, http.StatusOK, days)
}
