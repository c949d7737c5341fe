// Package popup drives the summarize and ask flows of a popup session.
package popup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"summarai/internal/extract"
	"summarai/internal/llm"
	"summarai/internal/render"
	"summarai/internal/settings"
	"summarai/internal/theme"
)

// ErrBusy is returned when the triggering action of a flow is still running.
var ErrBusy = errors.New("flow already in progress")

// SummarizeInput names the content to summarize and the response language.
type SummarizeInput struct {
	Source   extract.Source
	Language string
}

// Controller orchestrates one summary and any number of follow-up
// questions per popup session.
type Controller struct {
	llm       llm.Client
	extractor extract.Extractor
	settings  settings.Store
	writer    render.Typewriter
	log       *slog.Logger
}

// New builds a controller.
func New(client llm.Client, extractor extract.Extractor, store settings.Store, writer render.Typewriter, log *slog.Logger) *Controller {
	return &Controller{
		llm:       client,
		extractor: extractor,
		settings:  store,
		writer:    writer,
		log:       log,
	}
}

// Load restores the stored credential and theme.
func (c *Controller) Load(ctx context.Context) (Preferences, error) {
	key, err := c.settings.Credential(ctx)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load credential: %w", err)
	}
	name, err := c.settings.Theme(ctx)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to load theme: %w", err)
	}
	resolved := theme.Resolve(name)
	palette, _ := theme.Lookup(string(resolved))
	return Preferences{
		Credential:   key,
		Theme:        resolved,
		Palette:      palette,
		CanSummarize: strings.TrimSpace(key) != "",
	}, nil
}

// SaveCredential stores a trimmed credential. Empty input is ignored.
func (c *Controller) SaveCredential(ctx context.Context, st State, key string) (State, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return st, nil
	}
	if err := c.settings.SetCredential(ctx, key); err != nil {
		c.log.Error("failed to save credential", "err", err)
		st.Status = Status{Message: StatusKeyFailed, Kind: KindError}
		return st, err
	}
	st.Status = Status{Message: StatusKeySaved, Kind: KindSuccess}
	return st, nil
}

// SetTheme persists a theme choice. Unknown names select the default theme.
func (c *Controller) SetTheme(ctx context.Context, name string) (theme.Name, theme.Palette, error) {
	resolved := theme.Resolve(name)
	palette, _ := theme.Lookup(string(resolved))
	if err := c.settings.SetTheme(ctx, string(resolved)); err != nil {
		return resolved, palette, fmt.Errorf("failed to save theme: %w", err)
	}
	return resolved, palette, nil
}

// Summarize extracts the page text, asks for a summary and renders it into
// view. Without a stored credential the action is disabled and nothing
// happens. Failures leave the current summary untouched.
func (c *Controller) Summarize(ctx context.Context, st State, in SummarizeInput, view View) (State, error) {
	if st.Summarizing {
		return st, ErrBusy
	}
	credential, err := c.credential(ctx)
	if err != nil {
		return c.fail(st, view, err)
	}
	if credential == "" {
		return st, nil
	}
	failed := func(err error) (State, error) {
		st.Summarizing = false
		return c.fail(st, view, err)
	}

	st.Summarizing = true
	st.Status = Status{Message: StatusFetching, Kind: KindInfo}
	view.Update(st)

	content, err := c.extractor.Extract(ctx, in.Source)
	if err != nil {
		return failed(err)
	}

	st.Status = Status{Message: StatusGenerating, Kind: KindInfo}
	view.Update(st)

	summary, err := c.llm.Complete(ctx, credential, llm.SummaryRequest(content, in.Language))
	if err != nil {
		return failed(err)
	}

	st.Summary = summary
	st.Answer = ""
	st.Status = Status{}
	view.Update(st)
	if err := c.writer.Play(ctx, summary, view); err != nil {
		c.log.Warn("summary rendering interrupted", "err", err)
	}

	st.Summarizing = false
	st.QAVisible = true
	view.Update(st)
	return st, nil
}

// Ask answers question from the current summary. An empty question or a
// missing summary is ignored without calling the model.
func (c *Controller) Ask(ctx context.Context, st State, question string, view View) (State, error) {
	if st.Asking {
		return st, ErrBusy
	}
	question = strings.TrimSpace(question)
	if question == "" || st.Summary == "" {
		return st, nil
	}
	credential, err := c.credential(ctx)
	if err != nil {
		return c.fail(st, view, err)
	}
	if credential == "" {
		return st, nil
	}

	st.Asking = true
	st.Status = Status{Message: StatusAnswering, Kind: KindInfo}
	view.Update(st)

	answer, err := c.llm.Complete(ctx, credential, llm.AnswerRequest(st.Summary, question))
	if err != nil {
		st.Asking = false
		return c.fail(st, view, err)
	}

	st.Answer = answer
	st.Status = Status{}
	view.Update(st)
	if err := c.writer.Play(ctx, answer, view); err != nil {
		c.log.Warn("answer rendering interrupted", "err", err)
	}

	st.Asking = false
	view.Update(st)
	return st, nil
}

func (c *Controller) credential(ctx context.Context) (string, error) {
	key, err := c.settings.Credential(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load credential: %w", err)
	}
	return strings.TrimSpace(key), nil
}

// fail sets the error status; callers clear their own busy flag first.
func (c *Controller) fail(st State, view View, err error) (State, error) {
	c.log.Warn("popup flow failed", "err", err)
	st.Status = Status{Message: "Error: " + llm.UserMessage(err), Kind: KindError}
	view.Update(st)
	return st, err
}
