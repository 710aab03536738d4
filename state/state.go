// Package state defines the record threaded through a workflow run.
//
// A workflow state is a plain struct that embeds [Base]. The struct must
// stay serializable to a map at every step boundary, and [Export] followed
// by [Import] reproduces it exactly:
//
//	type Briefing struct {
//	    state.Base
//	    Symbol string  `json:"symbol" required:"true"`
//	    Change float64 `json:"change"`
//	}
//
//	s, err := state.Import[Briefing](map[string]any{"symbol": "ABC"})
//	m, err := state.Export(s)
//
// Fields are serialized under their json tag names. A field tagged
// required:"true" must be present in the map given to Import.
package state

import "time"

// Status is the lifecycle position of a run.
type Status string

const (
	StatusNew       Status = "new"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further steps will run.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Base carries the fields every workflow state has.
type Base struct {
	WorkflowID string    `json:"workflow_id,omitempty"`
	Status     Status    `json:"status,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Error      string    `json:"error,omitempty"`
}

// Meta returns the base fields. Embedding Base gives a struct this method
// and with it the State interface.
func (b *Base) Meta() *Base { return b }

// State is implemented by any struct embedding Base.
type State interface {
	Meta() *Base
}

// MetaOf returns the base fields of s, or nil when s does not embed Base.
func MetaOf(s any) *Base {
	if st, ok := s.(State); ok {
		return st.Meta()
	}
	return nil
}
