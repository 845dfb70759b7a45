package domain

import (
	"errors"
	"time"
)

// JobStatus represents the lifecycle state of a job on the board.
type JobStatus string

const (
	StatusOpen      JobStatus = "open"
	StatusClaimed   JobStatus = "claimed"
	StatusSubmitted JobStatus = "submitted"
	StatusCompleted JobStatus = "completed"
	StatusRejected  JobStatus = "rejected"
	StatusCancelled JobStatus = "cancelled"
)

// JobPriority ranks how urgently a job needs to be worked.
type JobPriority string

const (
	PriorityLow    JobPriority = "low"
	PriorityNormal JobPriority = "normal"
	PriorityHigh   JobPriority = "high"
	PriorityUrgent JobPriority = "urgent"
)

// validTransitions is the advisory state machine the backend enforces.
// The client uses it only to fail fast before a round trip.
var validTransitions = map[JobStatus][]JobStatus{
	StatusOpen:      {StatusClaimed, StatusCancelled},
	StatusClaimed:   {StatusSubmitted, StatusOpen, StatusCancelled},
	StatusSubmitted: {StatusCompleted, StatusRejected},
	StatusRejected:  {StatusSubmitted},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown job status")
var ErrUnknownPriority = errors.New("unknown job priority")

// CanTransitionTo reports whether moving from the current status to next is allowed.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw string into a JobStatus.
func ParseStatus(raw string) (JobStatus, error) {
	switch s := JobStatus(raw); s {
	case StatusOpen, StatusClaimed, StatusSubmitted, StatusCompleted, StatusRejected, StatusCancelled:
		return s, nil
	}
	return "", ErrUnknownStatus
}

// ParsePriority converts a raw string into a JobPriority.
func ParsePriority(raw string) (JobPriority, error) {
	switch p := JobPriority(raw); p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return p, nil
	}
	return "", ErrUnknownPriority
}

// Job is a unit of claimable work. All invariants (who may claim, which
// transitions apply) live server-side; the client holds a transient copy
// for the duration of one request/response cycle.
type Job struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Fee            float64     `json:"fee"`
	Status         JobStatus   `json:"status"`
	Priority       JobPriority `json:"priority"`
	ClaimedBy      string      `json:"claimed_by,omitempty"`
	ClaimedAt      *time.Time  `json:"claimed_at,omitempty"`
	SubmittedAt    *time.Time  `json:"submitted_at,omitempty"`
	SubmissionName string      `json:"submission_name,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
