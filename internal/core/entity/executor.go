package entity

import "time"

// ExecutorStatus is the per-executor work state. The zero value is idle.
type ExecutorStatus string

const (
	ExecutorIdle       ExecutorStatus = ""
	ExecutorInProgress ExecutorStatus = "IN_PROGRESS"
	ExecutorPaused     ExecutorStatus = "PAUSED"
	ExecutorDone       ExecutorStatus = "DONE"
)

// String renders the idle state explicitly.
func (s ExecutorStatus) String() string {
	if s == ExecutorIdle {
		return "IDLE"
	}
	return string(s)
}

// PauseAction marks an entry of the pause history.
type PauseAction string

const (
	ActionPause  PauseAction = "PAUSE"
	ActionResume PauseAction = "RESUME"
)

// PauseEvent is one entry of an executor's pause/resume history.
type PauseEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    PauseAction `json:"action"`
	Reason    string      `json:"reason,omitempty"`
}

// ExecutorState tracks one executor on one work order.
type ExecutorState struct {
	Status       ExecutorStatus `json:"status,omitempty"`
	StartTime    *time.Time     `json:"startTime,omitempty"`
	EndTime      *time.Time     `json:"endTime,omitempty"`
	PauseHistory []PauseEvent   `json:"pauseHistory,omitempty"`
}

// Clone returns a deep copy. A nil state clones to nil.
func (s *ExecutorState) Clone() *ExecutorState {
	if s == nil {
		return nil
	}
	c := *s
	c.PauseHistory = append([]PauseEvent(nil), s.PauseHistory...)
	if s.StartTime != nil {
		t := *s.StartTime
		c.StartTime = &t
	}
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	return &c
}
