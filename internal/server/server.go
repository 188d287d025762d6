// Package server publishes public-form pages over HTTP and replays posted
// submissions through the submission gate.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"

	formguard "github.com/goliatone/go-formguard"
	"github.com/goliatone/go-formguard/internal/formsource"
	"github.com/goliatone/go-formguard/pkg/controller"
	"github.com/goliatone/go-formguard/pkg/dom"
	"github.com/goliatone/go-formguard/pkg/env"
	"github.com/goliatone/go-formguard/pkg/field"
)

const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Catalog  *formsource.Catalog
	Renderer *formsource.Renderer
	// Controller options shared by every request. Probes and decorators are
	// added per request.
	Controller []controller.Option
	Decorators []env.Decorator
	Validator  *field.Validator
	Logger     *log.Logger
	IndexTitle string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server serves the form catalog.
type Server struct {
	opts   Options
	router *mux.Router
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Catalog == nil {
		return nil, errors.New("server: catalog is required")
	}
	if opts.Renderer == nil {
		renderer, err := formsource.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("server: renderer: %w", err)
		}
		opts.Renderer = renderer
	}
	if opts.Validator == nil {
		opts.Validator = field.New()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Decorators == nil {
		opts.Decorators = []env.Decorator{env.QRDecorator{}}
	}
	if opts.IndexTitle == "" {
		opts.IndexTitle = "Forms"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{opts: opts, router: mux.NewRouter()}
	s.routes()
	return s, nil
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/forms/{id}", s.handlePage).Methods(http.MethodGet)
	s.router.HandleFunc("/forms/{id}", s.handleSubmit).Methods(http.MethodPost)
	s.router.HandleFunc("/api/validate", s.handleValidate).Methods(http.MethodPost)
	s.router.PathPrefix("/assets/").Handler(
		http.StripPrefix("/assets/", http.FileServerFS(formguard.AssetsFS())),
	).Methods(http.MethodGet)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()
	s.opts.Logger.Info("listening", "addr", addr, "forms", s.opts.Catalog.Len())

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.opts.Logger.Info("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "OK")
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.opts.Renderer.RenderIndex(&buf, s.opts.IndexTitle, s.opts.Catalog.List()); err != nil {
		s.fail(w, "render index", err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	doc, err := dom.Parse(bytes.NewReader(page.Markup))
	if err != nil {
		s.fail(w, "parse page", err)
		return
	}
	ctrl := controller.New(s.controllerOptions(r)...)
	if err := ctrl.Init(doc); err != nil {
		s.fail(w, "init controller", err)
		return
	}
	ctrl.Teardown()
	writeHTML(w, http.StatusOK, []byte(doc.String()))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	page, ok := s.page(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	replay, err := formguard.ReplayPage(bytes.NewReader(page.Markup), r.PostForm, s.controllerOptions(r)...)
	if errors.Is(err, formguard.ErrNoPublicForm) {
		http.Error(w, "page has no public form", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		s.fail(w, "replay submission", err)
		return
	}

	logger := s.opts.Logger.With("form", page.ID, "attempt", replay.Attempt.ID)
	if !replay.Proceed {
		logger.Debug("submission blocked", "invalid", len(replay.Attempt.Invalid()))
		writeHTML(w, http.StatusUnprocessableEntity, []byte(replay.Document.String()))
		return
	}
	logger.Info("submission accepted")
	writeJSON(w, http.StatusOK, submitResponse{
		Form:    page.ID,
		Attempt: replay.Attempt.ID,
		State:   replay.Attempt.State.String(),
		Fields:  len(replay.Attempt.Fields),
	})
}

type submitResponse struct {
	Form    string `json:"form"`
	Attempt string `json:"attempt"`
	State   string `json:"state"`
	Fields  int    `json:"fields"`
}

type validateRequest struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Value    string   `json:"value"`
	Required bool     `json:"required"`
	Min      string   `json:"min"`
	Max      string   `json:"max"`
	Checked  []string `json:"checked"`
}

type validateResponse struct {
	Name string `json:"name,omitempty"`
	field.Result
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	kind := field.KindText
	if strings.TrimSpace(req.Kind) != "" {
		parsed, ok := field.ParseKind(req.Kind)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown kind %q", req.Kind)})
			return
		}
		kind = parsed
	}
	f := field.Field{
		Name:     req.Name,
		Kind:     kind,
		Value:    req.Value,
		Required: req.Required,
		Min:      req.Min,
		Max:      req.Max,
		Checked:  req.Checked,
	}
	if (kind == field.KindCheckboxGroup || kind == field.KindRadio) && f.Value == "" {
		f.Value = strings.Join(req.Checked, ",")
	}
	writeJSON(w, http.StatusOK, validateResponse{Name: req.Name, Result: s.opts.Validator.Validate(f)})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) (formsource.Page, bool) {
	page, err := s.opts.Catalog.Page(mux.Vars(r)["id"])
	if errors.Is(err, formsource.ErrUnknownForm) {
		http.NotFound(w, r)
		return formsource.Page{}, false
	}
	if err != nil {
		s.fail(w, "lookup page", err)
		return formsource.Page{}, false
	}
	return page, true
}

func (s *Server) controllerOptions(r *http.Request) []controller.Option {
	options := make([]controller.Option, 0, len(s.opts.Controller)+4)
	options = append(options,
		controller.WithValidator(s.opts.Validator),
		controller.WithLogger(s.opts.Logger),
	)
	options = append(options, s.opts.Controller...)
	return append(options,
		controller.WithProbes(env.FromHeaders(r.Header)),
		controller.WithDecorators(s.opts.Decorators...),
	)
}

func (s *Server) fail(w http.ResponseWriter, action string, err error) {
	s.opts.Logger.Error(action, "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
