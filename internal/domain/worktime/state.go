// Package worktime implements the executor state machine and the
// net worked hours computation.
package worktime

import (
	"strings"
	"time"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
)

// Action is a state machine input.
type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionComplete Action = "complete"
)

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(s)); a {
	case ActionStart, ActionPause, ActionResume, ActionComplete:
		return a, nil
	}
	return "", apperror.NewValidation("unknown executor action").WithDetail("action", s)
}

// Apply runs one transition. The state is left unchanged on error.
func Apply(st *entity.ExecutorState, action Action, at time.Time, reason string) error {
	switch action {
	case ActionStart:
		return Start(st, at)
	case ActionPause:
		return Pause(st, at, reason)
	case ActionResume:
		return Resume(st, at)
	case ActionComplete:
		return Complete(st, at)
	}
	return apperror.NewValidation("unknown executor action").WithDetail("action", string(action))
}

// Start moves IDLE to IN_PROGRESS and sets the start time.
func Start(st *entity.ExecutorState, at time.Time) error {
	if st.Status != entity.ExecutorIdle {
		return invalid(ActionStart, st)
	}
	at = at.UTC()
	st.Status = entity.ExecutorInProgress
	st.StartTime = &at
	st.EndTime = nil
	st.PauseHistory = nil
	return nil
}

// Pause moves IN_PROGRESS to PAUSED and appends a PAUSE entry.
func Pause(st *entity.ExecutorState, at time.Time, reason string) error {
	if st.Status != entity.ExecutorInProgress {
		return invalid(ActionPause, st)
	}
	st.Status = entity.ExecutorPaused
	st.PauseHistory = append(st.PauseHistory, entity.PauseEvent{
		Timestamp: at.UTC(),
		Action:    entity.ActionPause,
		Reason:    strings.TrimSpace(reason),
	})
	return nil
}

// Resume moves PAUSED to IN_PROGRESS and appends a RESUME entry.
func Resume(st *entity.ExecutorState, at time.Time) error {
	if st.Status != entity.ExecutorPaused {
		return invalid(ActionResume, st)
	}
	st.Status = entity.ExecutorInProgress
	st.PauseHistory = append(st.PauseHistory, entity.PauseEvent{
		Timestamp: at.UTC(),
		Action:    entity.ActionResume,
	})
	return nil
}

// Complete moves IN_PROGRESS to DONE and sets the end time.
// A paused executor must resume first.
func Complete(st *entity.ExecutorState, at time.Time) error {
	if st.Status != entity.ExecutorInProgress {
		return invalid(ActionComplete, st)
	}
	at = at.UTC()
	st.Status = entity.ExecutorDone
	st.EndTime = &at
	return nil
}

func invalid(action Action, st *entity.ExecutorState) error {
	return apperror.NewInvalidTransition(string(action), string(st.Status))
}
