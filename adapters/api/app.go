package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"csvprof/adapters/csvsource"
	"csvprof/adapters/excelsource"
	"csvprof/domain/core"
	"csvprof/domain/profile"
	"csvprof/internal"
	"csvprof/internal/config"
	"csvprof/internal/engine"
	"csvprof/internal/errors"
	"csvprof/internal/sampling"
	"csvprof/ports"
)

// maxUploadBytes caps uploaded dataset size
const maxUploadBytes = 512 << 20

// App is the HTTP surface of the profiler: upload-and-profile plus stored
// report retrieval. Each profiling request builds a fresh engine.
type App struct {
	router *chi.Mux
	cfg    config.EngineConfig
	store  ports.ReportStore
	logger *internal.Logger
}

// NewApp creates the HTTP application
func NewApp(cfg config.EngineConfig, store ports.ReportStore, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	app := &App{
		router: chi.NewRouter(),
		cfg:    cfg,
		store:  store,
		logger: logger,
	}
	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// Router exposes the configured handler
func (a *App) Router() http.Handler { return a.router }

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Post("/api/profile", a.handleProfileUpload)
	a.router.Post("/api/profile/inline", a.handleProfileInline)

	a.router.Get("/api/reports", a.handleListReports)
	a.router.Get("/api/reports/{id}", a.handleGetReport)
	a.router.Delete("/api/reports/{id}", a.handleDeleteReport)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProfileUpload accepts a multipart csv/xlsx upload, profiles it and
// stores the report.
func (a *App) handleProfileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.InvalidInput("multipart field 'file' is required"))
		return
	}
	defer file.Close()

	tmpPath, err := spoolUpload(file, header.Filename)
	if err != nil {
		a.writeError(w, err)
		return
	}
	defer os.Remove(tmpPath)

	source, err := openSource(tmpPath, header.Filename)
	if err != nil {
		a.writeError(w, err)
		return
	}
	defer source.Close()

	report, err := a.runProfile(r, source)
	if err != nil {
		a.writeError(w, err)
		return
	}
	report.Dataset.Source = header.Filename

	if err := a.store.Save(r.Context(), report); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// inlineRequest is the JSON body of the inline profiling endpoint
type inlineRequest struct {
	Name    string        `json:"name"`
	Headers []string      `json:"headers"`
	Rows    []profile.Row `json:"rows"`
}

// handleProfileInline profiles rows sent directly in the request body
func (a *App) handleProfileInline(w http.ResponseWriter, r *http.Request) {
	var req inlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid JSON body: "+err.Error()))
		return
	}
	if req.Name == "" {
		req.Name = "inline"
	}

	source := csvsource.NewSliceSource(req.Name, req.Headers, req.Rows)
	report, err := a.runProfile(r, source)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.store.Save(r.Context(), report); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// handleListReports lists stored report summaries
func (a *App) handleListReports(w http.ResponseWriter, r *http.Request) {
	filters := ports.ReportFilters{
		Source: r.URL.Query().Get("source"),
		Limit:  queryInt(r, "limit", 50),
		Offset: queryInt(r, "offset", 0),
	}
	summaries, err := a.store.List(r.Context(), filters)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": summaries})
}

// handleGetReport returns one stored report in full
func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, errors.InvalidInput("invalid report id"))
		return
	}
	report, err := a.store.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleDeleteReport removes a stored report
func (a *App) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseReportID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, errors.InvalidInput("invalid report id"))
		return
	}
	if err := a.store.Delete(r.Context(), id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runProfile builds an engine for the requested depth and runs one pass
func (a *App) runProfile(r *http.Request, source ports.RowSource) (*profile.Report, error) {
	depth := sampling.Depth(r.URL.Query().Get("depth"))
	switch depth {
	case "", sampling.DepthFast, sampling.DepthStandard, sampling.DepthDeep:
	default:
		return nil, errors.InvalidInput("depth must be fast, standard or deep")
	}
	eng := engine.NewEngine(a.cfg, depth, a.logger)
	return eng.Profile(r.Context(), source)
}

// writeError maps application errors onto HTTP status codes
func (a *App) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err), errors.GetCode(err) == errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.GetCode(err) == errors.CodeInvalidInput,
		errors.GetCode(err) == errors.CodeDatasetInvalid,
		core.IsDatasetShapeError(err):
		status = http.StatusBadRequest
	case errors.GetCode(err) == errors.CodeRunAborted:
		status = http.StatusRequestTimeout
	}

	if status == http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

// spoolUpload writes the uploaded stream to a temp file so the source can
// re-read it for the classification and full passes.
func spoolUpload(file io.Reader, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "csvprof-upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", errors.SourceError("creating upload spool file", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		os.Remove(tmp.Name())
		return "", errors.SourceError("spooling upload", err)
	}
	return tmp.Name(), nil
}

// openSource picks the row source adapter from the uploaded file extension
func openSource(path, filename string) (ports.RowSource, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return excelsource.NewSource(path, ""), nil
	case ".csv", ".tsv", ".txt", "":
		return csvsource.NewFileSource(path), nil
	default:
		return nil, errors.InvalidInput("unsupported file type: " + filepath.Ext(filename))
	}
}
