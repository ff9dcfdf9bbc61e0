package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	sm "github.com/ignaciocanosa/Precios-Relativos/service/models"
)

const (
	DefaultAddr = ":8080"

	defaultRemoteTimeout = 30 * time.Second
	writeTimeoutMargin   = 15 * time.Second

	paramSeriesA = "seriesA"
	paramSeriesB = "seriesB"
	paramNameA   = "a"
	paramNameB   = "b"
	paramFrom    = "from"
	paramTo      = "to"
	paramLimit   = "limit"

	invalidIdMessage = "ID inválido"
)

func GetHttpServer(sc *ServiceContext) *http.Server {
	addr := sc.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	return &http.Server{
		Addr:           addr,
		Handler:        sc.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   sc.writeTimeout(),
		MaxHeaderBytes: 1 << 20,
	}
}

// writeTimeout outlasts the remote api timeout so a slow fetch still gets its error page out.
func (sc *ServiceContext) writeTimeout() time.Duration {
	remote := sc.RemoteTimeout
	if remote <= 0 {
		remote = defaultRemoteTimeout
	}
	return remote + writeTimeoutMargin
}

func (sc *ServiceContext) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(sc.Sessions.Middleware)

	router.Get("/", sc.getDashboard)
	router.Post("/series", sc.postDashboardSeries)
	router.Get("/compare/chart.png", sc.getChart)
	router.Get("/compare/"+ExportFileName, sc.getCsv)

	router.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins:   sc.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           int((12 * time.Hour).Seconds()),
		}))

		api.Get("/ping", ping)
		api.Get("/units", getUnits)
		api.Get("/series", getSeries)
		api.Post("/series", postSeries)
		api.Get("/compare", sc.getComparison)
		api.Get("/runs", sc.getRuns)
	})

	return router
}

func sessionCatalog(req *http.Request) *Catalog {
	if s, ok := SessionFromContext(req.Context()); ok {
		return s.Catalog
	}
	// only reachable when the router runs without the session middleware
	return NewCatalog(DefaultSeries())
}

// parseComparisonSettings reads the selection either by ids or by composed column names,
// falling back to the first two catalog entries and the default date range.
func parseComparisonSettings(get func(string) string, catalog *Catalog) (ComparisonSettings, error) {
	settings := ComparisonSettings{From: DefaultDateFrom, To: DefaultDateTo}

	descriptors := catalog.Descriptors()
	if len(descriptors) > 0 {
		settings.SeriesA = descriptors[0].Id
		settings.SeriesB = descriptors[0].Id
	}
	if len(descriptors) > 1 {
		settings.SeriesB = descriptors[1].Id
	}

	var err error
	if settings.SeriesA, err = parseSeriesParam(get(paramSeriesA), get(paramNameA), settings.SeriesA, catalog); err != nil {
		return settings, err
	}
	if settings.SeriesB, err = parseSeriesParam(get(paramSeriesB), get(paramNameB), settings.SeriesB, catalog); err != nil {
		return settings, err
	}

	if v := strings.TrimSpace(get(paramFrom)); v != "" {
		if settings.From, err = ex.ParseDate(v); err != nil {
			return settings, fmt.Errorf("%v: %w", err, ErrInvalidInput)
		}
	}
	if v := strings.TrimSpace(get(paramTo)); v != "" {
		if settings.To, err = ex.ParseDate(v); err != nil {
			return settings, fmt.Errorf("%v: %w", err, ErrInvalidInput)
		}
	}

	return settings, nil
}

func parseSeriesParam(idText, name string, fallback int32, catalog *Catalog) (int32, error) {
	if strings.TrimSpace(idText) != "" {
		return ParseIdentifier(idText)
	}
	if name != "" {
		return catalog.Resolve(name)
	}
	return fallback, nil
}

/* dashboard */

func (sc *ServiceContext) getDashboard(w http.ResponseWriter, req *http.Request) {
	sc.serveDashboard(w, req, req.URL.Query().Get, nil)
}

func (sc *ServiceContext) postDashboardSeries(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	catalog := sessionCatalog(req)
	sc.serveDashboard(w, req, req.PostForm.Get, func(view *DashboardView) {
		id, err := ParseIdentifier(req.PostForm.Get("id"))
		if err != nil {
			view.RegisterErr = invalidIdMessage
			return
		}

		sd, err := catalog.Register(id, req.PostForm.Get("name"), dm.Unit(req.PostForm.Get("unit")))
		if err != nil {
			if errors.Is(err, ErrInvalidIdentifier) {
				view.RegisterErr = invalidIdMessage
			} else {
				view.RegisterErr = err.Error()
			}
			return
		}

		log.Printf("Registered series %d as %q", sd.Id, sd.ColumnName())
		view.Registered = sd.ColumnName()
	})
}

// serveDashboard renders the page. register runs before the comparison so a freshly
// added series is already selectable.
func (sc *ServiceContext) serveDashboard(w http.ResponseWriter, req *http.Request, get func(string) string, register func(*DashboardView)) {
	catalog := sessionCatalog(req)

	var registration DashboardView
	if register != nil {
		register(&registration)
	}

	settings, err := parseComparisonSettings(get, catalog)
	view := newDashboardView(catalog, settings)
	view.Registered = registration.Registered
	view.RegisterErr = registration.RegisterErr

	if err != nil {
		view.Error = UserMessage(err)
	} else if res, err := sc.RunComparison(req.Context(), catalog, settings); err != nil {
		view.Error = UserMessage(err)
	} else {
		remember(req, res)
		view.withResult(res)
	}

	var buf bytes.Buffer
	if err := renderDashboard(&buf, view); err != nil {
		log.Printf("Error rendering dashboard: %v", err)
		http.Error(w, "error rendering dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func remember(req *http.Request, res *ComparisonResult) {
	if s, ok := SessionFromContext(req.Context()); ok {
		s.Remember(res)
	}
}

// sessionComparison reuses the comparison the session already ran for settings, so the
// chart and the export of a rendered page never reach the remote api again.
func (sc *ServiceContext) sessionComparison(req *http.Request, catalog *Catalog, settings ComparisonSettings) (*ComparisonResult, error) {
	if s, ok := SessionFromContext(req.Context()); ok {
		if res, hit := s.Recall(settings); hit {
			return res, nil
		}
	}

	res, err := sc.RunComparison(req.Context(), catalog, settings)
	if err != nil {
		return nil, err
	}
	remember(req, res)
	return res, nil
}

// runFromQuery runs the comparison named in the query string and writes the failure itself.
func (sc *ServiceContext) runFromQuery(w http.ResponseWriter, req *http.Request) (*ComparisonResult, bool) {
	catalog := sessionCatalog(req)

	settings, err := parseComparisonSettings(req.URL.Query().Get, catalog)
	if err != nil {
		http.Error(w, UserMessage(err), HttpStatus(err))
		return nil, false
	}

	res, err := sc.sessionComparison(req, catalog, settings)
	if err != nil {
		http.Error(w, UserMessage(err), HttpStatus(err))
		return nil, false
	}
	if res.Outcome == OutcomeAdvisory {
		http.Error(w, res.Advisory, http.StatusBadRequest)
		return nil, false
	}
	return res, true
}

func (sc *ServiceContext) getChart(w http.ResponseWriter, req *http.Request) {
	res, ok := sc.runFromQuery(w, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := RenderRatioChart(&buf, res.Ratio); err != nil {
		http.Error(w, UserMessage(err), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (sc *ServiceContext) getCsv(w http.ResponseWriter, req *http.Request) {
	res, ok := sc.runFromQuery(w, req)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, res.Ratio); err != nil {
		http.Error(w, UserMessage(err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFileName))
	w.Write(buf.Bytes())
}

/* json api */

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, HttpStatus(err), sm.GetServiceResponseError(UserMessage(err)))
}

func ping(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
}

func getUnits(w http.ResponseWriter, req *http.Request) {
	units := dm.Units()
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&units))
}

func getSeries(w http.ResponseWriter, req *http.Request) {
	series := sm.MapSeriesDescriptors(sessionCatalog(req).Descriptors())
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&series))
}

func postSeries(w http.ResponseWriter, req *http.Request) {
	var body sm.RegisterSeriesRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("error decoding request body: %v: %w", err, ErrInvalidInput))
		return
	}

	sd, err := sessionCatalog(req).Register(body.Id, body.Name, dm.Unit(body.Unit))
	if err != nil {
		writeError(w, err)
		return
	}

	payload := sm.MapSeriesDescriptor(sd)
	writeJSON(w, http.StatusCreated, sm.GetServiceResponseOk(&payload))
}

func (sc *ServiceContext) getComparison(w http.ResponseWriter, req *http.Request) {
	catalog := sessionCatalog(req)

	settings, err := parseComparisonSettings(req.URL.Query().Get, catalog)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := sc.RunComparison(req.Context(), catalog, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	remember(req, res)

	payload := MapComparisonResponse(res)
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&payload))
}

func (sc *ServiceContext) getRuns(w http.ResponseWriter, req *http.Request) {
	limit := 0
	if v := req.URL.Query().Get(paramLimit); v != "" {
		var err error
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			writeError(w, fmt.Errorf("limit %q must be a positive number: %w", v, ErrInvalidInput))
			return
		}
	}

	var runs []*dm.ComparisonRun
	if sc.RunRecorder != nil {
		var err error
		if runs, err = sc.RunRecorder.GetRecentComparisonRuns(req.Context(), limit); err != nil {
			log.Printf("Error getting recent comparison runs: %v", err)
			writeJSON(w, http.StatusInternalServerError, sm.GetServiceResponseError(UserMessage(err)))
			return
		}
	}

	payload := sm.MapComparisonRuns(runs)
	writeJSON(w, http.StatusOK, sm.GetServiceResponseOk(&payload))
}

func MapComparisonResponse(res *ComparisonResult) sm.ComparisonResponse {
	payload := sm.ComparisonResponse{
		Advisory: res.Advisory,
		From:     ex.FmtShort(res.Settings.From),
		To:       ex.FmtShort(res.Settings.To),
		Rows:     sm.MapRatioRows(res.Ratio),
	}
	if res.Outcome == OutcomeRatio {
		a, b := sm.MapSeriesDescriptor(res.SeriesA), sm.MapSeriesDescriptor(res.SeriesB)
		payload.SeriesA, payload.SeriesB = &a, &b
		payload.Statistics = res.Statistics
	}
	return payload
}
