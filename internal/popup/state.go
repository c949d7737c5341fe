package popup

import (
	"summarai/internal/render"
	"summarai/internal/theme"
)

// StatusKind styles the status line.
type StatusKind string

const (
	KindNone    StatusKind = ""
	KindInfo    StatusKind = "info"
	KindError   StatusKind = "error"
	KindSuccess StatusKind = "success"
)

// Status is the single user-visible status line.
type Status struct {
	Message string     `json:"message"`
	Kind    StatusKind `json:"kind,omitempty"`
}

// Status lines shown during flows.
const (
	StatusFetching   = "Getting page content..."
	StatusGenerating = "Generating summary..."
	StatusAnswering  = "Getting answer..."
	StatusKeySaved   = "API key saved!"
	StatusKeyFailed  = "Failed to save API key"
)

// State is everything a popup displays. Controller operations take a State
// and return the next one; nothing else is mutated.
type State struct {
	Summary     string `json:"summary"`
	Answer      string `json:"answer,omitempty"`
	Status      Status `json:"status"`
	Summarizing bool   `json:"summarizing"`
	Asking      bool   `json:"asking"`
	QAVisible   bool   `json:"qa_visible"`
}

// CanAsk reports whether the question affordance accepts input.
func (s State) CanAsk() bool {
	return s.Summary != "" && !s.Asking
}

// Failed reports whether the last flow ended in an error.
func (s State) Failed() bool {
	return s.Status.Kind == KindError
}

// Preferences is what the popup restores when it opens.
type Preferences struct {
	Credential   string        `json:"credential"`
	Theme        theme.Name    `json:"theme"`
	Palette      theme.Palette `json:"palette"`
	CanSummarize bool          `json:"can_summarize"`
}

// View receives intermediate states and the rendered text of a flow.
type View interface {
	render.Sink
	Update(State)
}

// Silent adapts a sink that does not care about intermediate states.
func Silent(sink render.Sink) View {
	return silentView{sink}
}

type silentView struct {
	render.Sink
}

func (silentView) Update(State) {}
