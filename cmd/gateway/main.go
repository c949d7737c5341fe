package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"summarai/internal/app"
	"summarai/internal/extract"
	"summarai/internal/httputil"
	"summarai/internal/popup"
	"summarai/internal/queue"
	"summarai/internal/render"
	"summarai/internal/session"
	"summarai/internal/theme"
)

type credentialRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

type themeRequest struct {
	Theme string `json:"theme" validate:"required"`
}

type selectionRequest struct {
	Text string `json:"text" validate:"required"`
}

type summarizeRequest struct {
	URL      string `json:"url" validate:"omitempty,http_url"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
	Language string `json:"language" validate:"omitempty,max=16"`
}

type askRequest struct {
	Question string `json:"question"`
}

type themeResponse struct {
	Name    theme.Name    `json:"name"`
	Palette theme.Palette `json:"palette"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := serve(ctx, deps, srv); err != nil {
		deps.Log.Error("gateway stopped", "err", err)
		deps.Close()
		os.Exit(1)
	}
}

// serve runs the HTTP server and the selection consumer until ctx is done
// or either of them fails.
func serve(ctx context.Context, deps app.Deps, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		if err := deps.Queue.Consume(gctx, selectionConsumer(deps)); err != nil {
			return fmt.Errorf("selection consumer failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log)
	r.Get("/healthz", httputil.HealthHandler(deps.Log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/settings", settingsHandler(deps))
		r.Put("/settings/credential", credentialHandler(deps))
		r.Put("/settings/theme", themeHandler(deps))
		r.Get("/themes", themesHandler())

		r.Post("/sessions", createSessionHandler(deps))
		r.Get("/sessions/{id}", getSessionHandler(deps))
		r.Post("/sessions/{id}/selection", selectionHandler(deps))
		r.Post("/sessions/{id}/summarize", summarizeHandler(deps))
		r.Post("/sessions/{id}/ask", askHandler(deps))
	})
	return r
}

func settingsHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefs, err := deps.Controller.Load(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load settings", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"credential_set":  prefs.CanSummarize,
			"credential_hint": maskCredential(prefs.Credential),
			"theme":           prefs.Theme,
			"palette":         prefs.Palette,
		})
	}
}

// maskCredential keeps only the last four characters of a stored key.
func maskCredential(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	const visible = 4
	r := []rune(key)
	if len(r) <= 2*visible {
		return strings.Repeat("*", len(r))
	}
	return strings.Repeat("*", len(r)-visible) + string(r[len(r)-visible:])
}

func credentialHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.Fail(deps.Log, w, httputil.ValidationError(err), err, http.StatusBadRequest)
			return
		}
		st, err := deps.Controller.SaveCredential(r.Context(), popup.State{}, req.APIKey)
		status := http.StatusOK
		if err != nil {
			status = http.StatusInternalServerError
		}
		httputil.WriteJSON(w, status, map[string]any{"status": st.Status})
	}
}

func themeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req themeRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.Fail(deps.Log, w, httputil.ValidationError(err), err, http.StatusBadRequest)
			return
		}
		name, palette, err := deps.Controller.SetTheme(r.Context(), req.Theme)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to save theme", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, themeResponse{Name: name, Palette: palette})
	}
}

func themesHandler() http.HandlerFunc {
	themes := make([]themeResponse, 0, len(theme.Names))
	for _, n := range theme.Names {
		p, _ := theme.Lookup(string(n))
		themes = append(themes, themeResponse{Name: n, Palette: p})
	}
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, themes)
	}
}

func createSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := deps.Sessions.Create(r.Context())
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to create session", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, map[string]any{"session_id": s.ID.String()})
	}
}

func getSessionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s.State)
	}
}

func selectionHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
			return
		}
		var req selectionRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.Fail(deps.Log, w, httputil.ValidationError(err), err, http.StatusBadRequest)
			return
		}
		if err := deps.Sessions.SetSelection(r.Context(), id, req.Text); err != nil {
			failSession(deps, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func summarizeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		var req summarizeRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.Fail(deps.Log, w, httputil.ValidationError(err), err, http.StatusBadRequest)
			return
		}
		if s.State.Summarizing {
			httputil.Fail(deps.Log, w, popup.ErrBusy.Error(), popup.ErrBusy, http.StatusConflict)
			return
		}
		prefs, err := deps.Controller.Load(ctx)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load settings", err, http.StatusInternalServerError)
			return
		}
		if !prefs.CanSummarize {
			httputil.Fail(deps.Log, w, "api key not set", nil, http.StatusPreconditionFailed)
			return
		}

		src := extract.Source{URL: req.URL, HTML: req.HTML, Text: req.Text}
		selection, err := deps.Sessions.TakeSelection(ctx, s.ID)
		if err != nil {
			failSession(deps, w, err)
			return
		}
		if selection != "" {
			src = extract.Source{Text: selection}
		}
		if src.IsZero() {
			httputil.Fail(deps.Log, w, "url, html or text is required", nil, http.StatusBadRequest)
			return
		}

		in := popup.SummarizeInput{Source: src, Language: req.Language}
		_, err = runFlow(deps, w, r, s, func(view popup.View) (popup.State, error) {
			return deps.Controller.Summarize(ctx, s.State, in, view)
		})
		if err != nil && selection != "" {
			// a failed flow must not consume the selection
			if err := deps.Sessions.SetSelection(context.WithoutCancel(ctx), s.ID, selection); err != nil {
				deps.Log.Warn("failed to restore selection", "session_id", s.ID, "err", err)
			}
		}
	}
}

func askHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		s, ok := loadSession(deps, w, r)
		if !ok {
			return
		}
		var req askRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.Fail(deps.Log, w, httputil.ValidationError(err), err, http.StatusBadRequest)
			return
		}
		_, _ = runFlow(deps, w, r, s, func(view popup.View) (popup.State, error) {
			return deps.Controller.Ask(ctx, s.State, req.Question, view)
		})
	}
}

// runFlow executes a controller flow against a session, persisting every
// intermediate state so concurrent requests observe the busy flags. With
// ?stream=1 the rendered chunks are written to the response as they arrive.
// The flow's result is returned after the response is written.
func runFlow(deps app.Deps, w http.ResponseWriter, r *http.Request, s session.Session, flow func(popup.View) (popup.State, error)) (popup.State, error) {
	stream := r.URL.Query().Get("stream") == "1"
	view := &sessionView{
		ctx:   context.WithoutCancel(r.Context()),
		store: deps.Sessions,
		sess:  s,
		log:   deps.Log.With("session_id", s.ID),
	}
	if stream {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		view.Sink = &countingSink{Sink: render.NewWriterSink(w)}
	} else {
		view.Sink = render.Discard
	}

	st, err := flow(view)
	if errors.Is(err, popup.ErrBusy) {
		httputil.Fail(deps.Log, w, err.Error(), err, http.StatusConflict)
		return st, err
	}
	view.Update(st)

	if stream {
		if cs := view.Sink.(*countingSink); cs.n == 0 {
			code := http.StatusOK
			if st.Failed() {
				code = http.StatusBadGateway
			}
			w.WriteHeader(code)
			_, _ = w.Write([]byte(st.Status.Message))
		}
		return st, err
	}
	code := http.StatusOK
	if st.Failed() {
		code = http.StatusBadGateway
	}
	httputil.WriteJSON(w, code, st)
	return st, err
}

// sessionView saves each state the controller publishes.
type sessionView struct {
	render.Sink
	ctx   context.Context
	store session.Store
	sess  session.Session
	log   *slog.Logger
}

func (v *sessionView) Update(st popup.State) {
	v.sess.State = st
	if err := v.store.Save(v.ctx, v.sess); err != nil {
		v.log.Warn("failed to save session state", "err", err)
	}
}

type countingSink struct {
	render.Sink
	n int
}

func (c *countingSink) Append(chunk string) error {
	c.n++
	return c.Sink.Append(chunk)
}

func loadSession(deps app.Deps, w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Fail(deps.Log, w, "invalid session id", err, http.StatusBadRequest)
		return session.Session{}, false
	}
	s, err := deps.Sessions.Get(r.Context(), id)
	if err != nil {
		failSession(deps, w, err)
		return session.Session{}, false
	}
	return s, true
}

func failSession(deps app.Deps, w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		httputil.Fail(deps.Log, w, "session not found", err, http.StatusNotFound)
		return
	}
	httputil.Fail(deps.Log, w, "session store unavailable", err, http.StatusInternalServerError)
}

// selectionConsumer stores context-menu selections published by the
// extension as the pending content of their session.
func selectionConsumer(deps app.Deps) queue.Handler {
	return func(ctx context.Context, ev queue.SelectionEvent) error {
		if err := deps.Sessions.SetSelection(ctx, ev.SessionID, ev.Text); err != nil {
			return fmt.Errorf("failed to store selection: %w", err)
		}
		deps.Log.Info("selection received", "session_id", ev.SessionID, "chars", len(ev.Text))
		return nil
	}
}
