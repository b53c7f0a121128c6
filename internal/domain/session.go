package domain

import "time"

// SessionStatus is the lifecycle state of a work session.
type SessionStatus string

const (
	SessionRunning SessionStatus = "running"
	SessionDone    SessionStatus = "done"
	SessionFailed  SessionStatus = "failed"
)

// Session is the state of one form-filling run.
type Session struct {
	WorkID      string        `json:"work_id"`
	Document    string        `json:"-"`
	Context     string        `json:"-"`
	Status      SessionStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	Tags        []TagRecord   `json:"tags"`
	Merged      []*MergedTag  `json:"merged"`
	Actions     []Action      `json:"actions"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// SessionSummary is the listing view of a session.
type SessionSummary struct {
	WorkID      string        `json:"work_id"`
	Status      SessionStatus `json:"status"`
	Tags        int           `json:"tags"`
	Actions     int           `json:"actions"`
	CreatedAt   time.Time     `json:"created_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// Summary returns the listing view.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		WorkID:      s.WorkID,
		Status:      s.Status,
		Tags:        len(s.Tags),
		Actions:     len(s.Actions),
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
}

// Active reports whether the session is still running.
func (s *Session) Active() bool {
	return s.Status == SessionRunning
}
