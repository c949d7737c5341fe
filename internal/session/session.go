// Package session keeps popup state between gateway requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"summarai/internal/popup"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is one popup lifetime.
type Session struct {
	ID        uuid.UUID   `json:"id"`
	State     popup.State `json:"state"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store holds sessions and their pending context-menu selection.
type Store interface {
	// Create starts an empty session.
	Create(ctx context.Context) (Session, error)

	// Get returns ErrNotFound when the session has expired.
	Get(ctx context.Context, id uuid.UUID) (Session, error)

	// Save stores the session and refreshes its TTL.
	Save(ctx context.Context, s Session) error

	// SetSelection records text captured from the page for the next summary.
	SetSelection(ctx context.Context, id uuid.UUID, text string) error

	// TakeSelection returns and clears the pending selection. Missing
	// selections return "".
	TakeSelection(ctx context.Context, id uuid.UUID) (string, error)

	Close() error
}
