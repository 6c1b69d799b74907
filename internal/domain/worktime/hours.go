package worktime

import (
	"sort"
	"time"

	"maintledger/internal/core/entity"
)

// Hours is the result of the interval arithmetic for one executor.
type Hours struct {
	Gross  time.Duration `json:"-"`
	Paused time.Duration `json:"-"`
	Net    time.Duration `json:"-"`

	GrossHours  float64 `json:"grossHours"`
	PausedHours float64 `json:"pausedHours"`
	NetHours    float64 `json:"netHours"`
}

func newHours(gross, paused time.Duration) Hours {
	net := gross - paused
	if net < 0 {
		net = 0
	}
	return Hours{
		Gross:       gross,
		Paused:      paused,
		Net:         net,
		GrossHours:  gross.Hours(),
		PausedHours: paused.Hours(),
		NetHours:    net.Hours(),
	}
}

// Compute returns gross, paused and net time between start and end.
//
// Each PAUSE is paired with the next RESUME. A second PAUSE while one is
// open is ignored, as is a RESUME with nothing open. A PAUSE still open at
// the end counts as paused until end. Pause intervals are clipped to
// [start, end].
func Compute(start, end time.Time, history []entity.PauseEvent) Hours {
	gross := end.Sub(start)
	if gross <= 0 {
		return newHours(0, 0)
	}

	events := append([]entity.PauseEvent(nil), history...)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	var paused time.Duration
	var open *time.Time
	for i := range events {
		ev := events[i]
		switch ev.Action {
		case entity.ActionPause:
			if open == nil {
				ts := ev.Timestamp
				open = &ts
			}
		case entity.ActionResume:
			if open != nil {
				paused += overlap(*open, ev.Timestamp, start, end)
				open = nil
			}
		}
	}
	if open != nil {
		paused += overlap(*open, end, start, end)
	}

	return newHours(gross, paused)
}

func overlap(from, to, start, end time.Time) time.Duration {
	if from.Before(start) {
		from = start
	}
	if to.After(end) {
		to = end
	}
	if !to.After(from) {
		return 0
	}
	return to.Sub(from)
}
