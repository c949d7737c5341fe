// Package queue carries context-menu selections to the gateway.
package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SelectionSubject is the subject selection events are published on.
const SelectionSubject = "summarai.selection"

// ErrInvalidEvent is returned for events without a session or text.
var ErrInvalidEvent = errors.New("selection event requires session id and text")

// SelectionEvent is emitted when the user picks "Summarize Selection" on a
// page.
type SelectionEvent struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	Text       string    `json:"text"`
	CapturedAt time.Time `json:"captured_at"`
}

// Validate checks the fields a consumer relies on.
func (e SelectionEvent) Validate() error {
	if e.SessionID == uuid.Nil || strings.TrimSpace(e.Text) == "" {
		return ErrInvalidEvent
	}
	return nil
}

type Handler func(context.Context, SelectionEvent) error

// Queue exposes a minimal contract to publish and consume selections.
type Queue interface {
	Publish(ctx context.Context, ev SelectionEvent) error
	// Consume blocks until ctx is done.
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// NewNop returns a queue for deployments without a broker. Publishing
// fails and consuming waits for shutdown.
func NewNop() Queue { return nopQueue{} }

// ErrNoBroker is returned by the nop queue's Publish.
var ErrNoBroker = errors.New("no selection broker configured")

type nopQueue struct{}

func (nopQueue) Publish(context.Context, SelectionEvent) error { return ErrNoBroker }

func (nopQueue) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (nopQueue) Close() error { return nil }
