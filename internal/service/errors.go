package service

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidInput is returned for a request missing a required field.
	ErrInvalidInput = errors.New("invalid input data")
	// ErrDuplicateWork is returned when the work id is still running.
	ErrDuplicateWork = errors.New("work already running")
	// ErrContextNotFound is returned when the context document is missing.
	ErrContextNotFound = errors.New("context file not found")
	// ErrSessionNotFound is returned for an unknown work id.
	ErrSessionNotFound = errors.New("session not found")
)

// Client-facing error strings reported on end-process and by the API.
const (
	MsgInvalidInput    = "Invalid input data"
	MsgContextNotFound = "Context file not found"
	MsgInternal        = "Internal server error"
)

// FailureReport is the end-process payload of a failed run.
type FailureReport struct {
	WorkID  string `json:"work_id"`
	Error   string `json:"error"`
	Details string `json:"details"`
	Trace   string `json:"trace,omitempty"`
}

// Completion is the end-process payload of a successful run. It echoes the
// submission, with the run outcome alongside.
type Completion struct {
	WorkID       string `json:"work_id"`
	RenderedHTML string `json:"renderedHTML"`
	Status       string `json:"status"`
	Actions      int    `json:"actions"`
}

// Message maps err onto one of the three client-facing error strings.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return MsgInvalidInput
	case errors.Is(err, ErrContextNotFound):
		return MsgContextNotFound
	default:
		return MsgInternal
	}
}

// NewFailureReport builds the report for err. Internal errors carry the
// chain of wrapped causes as their trace unless trace is given.
func NewFailureReport(workID string, err error, trace string) FailureReport {
	report := FailureReport{WorkID: workID, Error: Message(err), Details: err.Error()}
	if report.Error != MsgInternal {
		return report
	}
	if trace == "" {
		trace = causes(err)
	}
	report.Trace = trace
	return report
}

func causes(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		if b.Len() > 0 {
			b.WriteString("\ncaused by: ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
