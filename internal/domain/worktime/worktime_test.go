package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/entity"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2024, 6, 3, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func pause(hhmm string) entity.PauseEvent {
	return entity.PauseEvent{Timestamp: at(hhmm), Action: entity.ActionPause}
}

func resume(hhmm string) entity.PauseEvent {
	return entity.PauseEvent{Timestamp: at(hhmm), Action: entity.ActionResume}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		history    []entity.PauseEvent
		gross      float64
		paused     float64
		net        float64
	}{
		{"paired pause", "10:00", "12:00", []entity.PauseEvent{pause("10:30"), resume("11:00")}, 2, 0.5, 1.5},
		{"trailing pause", "10:00", "11:00", []entity.PauseEvent{pause("10:30")}, 1, 0.5, 0.5},
		{"no pauses", "08:00", "09:30", nil, 1.5, 0, 1.5},
		{"duplicate pause keeps first", "10:00", "12:00", []entity.PauseEvent{pause("10:00"), pause("10:30"), resume("11:00")}, 2, 1, 1},
		{"stray resume ignored", "10:00", "12:00", []entity.PauseEvent{resume("10:15"), pause("11:00"), resume("11:30")}, 2, 0.5, 1.5},
		{"pause before start clipped", "10:00", "12:00", []entity.PauseEvent{pause("09:00"), resume("10:30")}, 2, 0.5, 1.5},
		{"resume after end clipped", "10:00", "12:00", []entity.PauseEvent{pause("11:30"), resume("13:00")}, 2, 0.5, 1.5},
		{"unordered history", "10:00", "12:00", []entity.PauseEvent{resume("11:00"), pause("10:30")}, 2, 0.5, 1.5},
		{"end before start", "12:00", "10:00", nil, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Compute(at(tt.start), at(tt.end), tt.history)
			assert.InDelta(t, tt.gross, h.GrossHours, 1e-9)
			assert.InDelta(t, tt.paused, h.PausedHours, 1e-9)
			assert.InDelta(t, tt.net, h.NetHours, 1e-9)
		})
	}
}

func TestStateMachine_HappyPath(t *testing.T) {
	st := &entity.ExecutorState{}

	require.NoError(t, Apply(st, ActionStart, at("10:00"), ""))
	require.NoError(t, Apply(st, ActionPause, at("10:30"), " waiting for parts "))
	require.NoError(t, Apply(st, ActionResume, at("11:00"), ""))
	require.NoError(t, Apply(st, ActionComplete, at("12:00"), ""))

	assert.Equal(t, entity.ExecutorDone, st.Status)
	require.Len(t, st.PauseHistory, 2)
	assert.Equal(t, "waiting for parts", st.PauseHistory[0].Reason)

	eh := ForExecutor("e1", st, at("18:00"))
	assert.False(t, eh.Open)
	assert.InDelta(t, 1.5, eh.NetHours, 1e-9)
}

func TestStateMachine_RejectsOutOfOrder(t *testing.T) {
	tests := []struct {
		name   string
		status entity.ExecutorStatus
		action Action
		state  string
	}{
		{"pause while idle", entity.ExecutorIdle, ActionPause, "IDLE"},
		{"resume while running", entity.ExecutorInProgress, ActionResume, "IN_PROGRESS"},
		{"complete while paused", entity.ExecutorPaused, ActionComplete, "PAUSED"},
		{"start twice", entity.ExecutorInProgress, ActionStart, "IN_PROGRESS"},
		{"pause after done", entity.ExecutorDone, ActionPause, "DONE"},
		{"complete while idle", entity.ExecutorIdle, ActionComplete, "IDLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &entity.ExecutorState{Status: tt.status}
			err := Apply(st, tt.action, at("10:00"), "")

			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
			assert.Equal(t, tt.state, appErr.Details["state"])
			assert.Equal(t, tt.status, st.Status)
			assert.Empty(t, st.PauseHistory)
		})
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("Resume")
	require.NoError(t, err)
	assert.Equal(t, ActionResume, a)

	_, err = ParseAction("cancel")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestForWorkOrder_MultiExecutor(t *testing.T) {
	start := at("08:00")
	end := at("10:00")
	wo := &entity.WorkOrder{
		ID: "wo-1",
		ExecutorStates: map[string]*entity.ExecutorState{
			"bob": {Status: entity.ExecutorDone, StartTime: &start, EndTime: &end,
				PauseHistory: []entity.PauseEvent{pause("09:00"), resume("09:15")}},
			"amy": {Status: entity.ExecutorPaused, StartTime: &start,
				PauseHistory: []entity.PauseEvent{pause("09:00")}},
		},
	}

	r := ForWorkOrder(wo, at("11:00"))
	require.Len(t, r.Executors, 2)
	assert.Equal(t, "amy", r.Executors[0].ExecutorID)
	assert.True(t, r.Executors[0].Open)
	assert.InDelta(t, 1.0, r.Executors[0].NetHours, 1e-9)
	assert.Equal(t, []string{"amy"}, r.OpenExecutors)
	assert.InDelta(t, 1.75, r.TotalNetHours, 1e-9)
}

func TestForWorkOrder_Legacy(t *testing.T) {
	start := at("10:00")
	end := at("11:00")
	wo := &entity.WorkOrder{
		ID:           "wo-legacy",
		StartTime:    &start,
		EndTime:      &end,
		PauseHistory: []entity.PauseEvent{pause("10:30")},
	}

	r := ForWorkOrder(wo, at("15:00"))
	require.Len(t, r.Executors, 1)
	assert.True(t, r.Executors[0].Legacy)
	assert.Equal(t, entity.ExecutorDone, r.Executors[0].Status)
	assert.InDelta(t, 0.5, r.TotalNetHours, 1e-9)
}

func TestForWorkOrder_SkipsMissingState(t *testing.T) {
	start := at("08:00")
	end := at("09:00")
	wo := &entity.WorkOrder{
		ID: "wo-1",
		ExecutorStates: map[string]*entity.ExecutorState{
			"bob": {Status: entity.ExecutorDone, StartTime: &start, EndTime: &end},
			"amy": nil,
		},
	}

	r := ForWorkOrder(wo, at("11:00"))
	require.Len(t, r.Executors, 1)
	assert.Equal(t, "bob", r.Executors[0].ExecutorID)
	assert.InDelta(t, 1.0, r.TotalNetHours, 1e-9)
}
