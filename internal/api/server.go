// Package api serves stored comparison results as JSON.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/banshee-data/kurbeln/internal/config"
	"github.com/banshee-data/kurbeln/internal/db"
	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/httputil"
	"github.com/banshee-data/kurbeln/internal/monitoring"
	"github.com/banshee-data/kurbeln/internal/report"
	"github.com/banshee-data/kurbeln/internal/security"
)

// ANSI escape codes for the request log
const (
	colorCyan      = "\033[36m"
	colorReset     = "\033[0m"
	colorYellow    = "\033[33m"
	colorBoldGreen = "\033[1;32m"
	colorBoldRed   = "\033[1;31m"
)

// ResultReader is the read side of the result store. *db.DB implements it.
type ResultReader interface {
	GetResult(id1, id2 string) (*db.StoredResult, error)
	ResultsForFlight(id string) ([]db.StoredResult, error)
	GetRun(runID string) (*db.ComputeRun, error)
}

type Server struct {
	store   ResultReader
	flights *flights.Catalogue // optional, adds pilot names
	tuning  *config.TuningConfig
}

func NewServer(store ResultReader, cat *flights.Catalogue, tuning *config.TuningConfig) *Server {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &Server{store: store, flights: cat, tuning: tuning}
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/flights/{id}/results", s.flightResults)
	mux.HandleFunc("/api/pairs/{id1}/{id2}", s.pairResult)
	mux.HandleFunc("/api/runs/{id}", s.showRun)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

// resultView is a stored result with display fields.
type resultView struct {
	db.StoredResult
	Pilot1       string `json:"pilot1,omitempty"`
	Pilot2       string `json:"pilot2,omitempty"`
	DurationText string `json:"duration_text,omitempty"`
}

func (s *Server) view(r db.StoredResult) resultView {
	v := resultView{StoredResult: r}
	if r.Found() {
		v.DurationText = report.PrettyDuration(r.Match.Duration)
	}
	if s.flights != nil {
		if f, ok := s.flights.ByID(r.Flight1); ok {
			v.Pilot1 = f.Pilot()
		}
		if f, ok := s.flights.ByID(r.Flight2); ok {
			v.Pilot2 = f.Pilot()
		}
	}
	return v
}

// flightID reads and validates a flight id path value.
func flightID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if err := security.ValidateFlightID(id); err != nil {
		httputil.BadRequest(w, "invalid flight id %q", id)
		return "", false
	}
	return id, true
}

func (s *Server) flightResults(w http.ResponseWriter, r *http.Request) {
	if !httputil.AllowMethods(w, r, http.MethodGet) {
		return
	}
	id, ok := flightID(w, r, "id")
	if !ok {
		return
	}

	results, err := s.store.ResultsForFlight(id)
	if err != nil {
		httputil.InternalServerError(w, r, err)
		return
	}

	onlyMatches, _ := strconv.ParseBool(r.URL.Query().Get("matches"))
	out := make([]resultView, 0, len(results))
	for _, res := range results {
		if onlyMatches && !res.Found() {
			continue
		}
		out = append(out, s.view(res))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) pairResult(w http.ResponseWriter, r *http.Request) {
	if !httputil.AllowMethods(w, r, http.MethodGet) {
		return
	}
	id1, ok := flightID(w, r, "id1")
	if !ok {
		return
	}
	id2, ok := flightID(w, r, "id2")
	if !ok {
		return
	}
	if id1 == id2 {
		httputil.BadRequest(w, "a flight cannot be paired with itself")
		return
	}

	res, err := s.store.GetResult(id1, id2)
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "no result for %s-%s", id1, id2)
		return
	}
	if err != nil {
		httputil.InternalServerError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.view(*res))
}

func (s *Server) showRun(w http.ResponseWriter, r *http.Request) {
	if !httputil.AllowMethods(w, r, http.MethodGet) {
		return
	}
	run, err := s.store.GetRun(r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		httputil.NotFound(w, "no run %q", r.PathValue("id"))
		return
	}
	if err != nil {
		httputil.InternalServerError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, run)
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if !httputil.AllowMethods(w, r, http.MethodGet) {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, s.tuning)
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, status and duration of each request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf("[%s] %s %s%s%s %.1fms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Microseconds())/1e3,
		)
	})
}
