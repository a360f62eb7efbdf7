package monitor

import (
	"time"

	"github.com/aleister1102/certwatch/internal/history"
	"github.com/aleister1102/certwatch/internal/models"

	"github.com/rs/zerolog"
)

// CycleSummary holds the counters of one scan cycle. It is only used for logging,
// metrics and history; owners never receive it.
type CycleSummary struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time

	Owners  int
	Targets int
	Checked int
	Skipped int

	FetchErrors      int
	Classifications  map[models.Classification]int
	AlertsSent       int
	Recovered        int
	DeliveryFailures int
	Pruned           int

	ReferenceAvailable bool
}

func newCycleSummary(cycleID string, startedAt time.Time) *CycleSummary {
	return &CycleSummary{
		CycleID:         cycleID,
		StartedAt:       startedAt,
		Classifications: make(map[models.Classification]int),
	}
}

// Duration returns how long the cycle took.
func (s *CycleSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Alarmed returns how many pairs were classified as anything but Clean.
func (s *CycleSummary) Alarmed() int {
	total := 0
	for c, n := range s.Classifications {
		if c.IsAlarm() {
			total += n
		}
	}
	return total
}

func (s *CycleSummary) add(r pairResult) {
	switch {
	case r.skipped:
		s.Skipped++
		return
	case r.fetchErr != nil:
		s.FetchErrors++
	default:
		s.Checked++
		s.Classifications[r.classification]++
	}
	if r.notified {
		s.AlertsSent++
	}
	if r.recovered {
		s.Recovered++
	}
	if r.deliveryFailed {
		s.DeliveryFailures++
	}
}

// Counts converts the summary into history counters.
func (s *CycleSummary) Counts() history.CycleCounts {
	return history.CycleCounts{
		Owners:      s.Owners,
		Targets:     s.Targets,
		Alerts:      s.AlertsSent,
		FetchErrors: s.FetchErrors,
		Recovered:   s.Recovered,
	}
}

// MarshalZerologObject lets the summary be logged with Object().
func (s *CycleSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("cycle_id", s.CycleID).
		Int("owners", s.Owners).
		Int("targets", s.Targets).
		Int("checked", s.Checked).
		Int("skipped", s.Skipped).
		Int("fetch_errors", s.FetchErrors).
		Int("alarmed", s.Alarmed()).
		Int("alerts_sent", s.AlertsSent).
		Int("recovered", s.Recovered).
		Int("delivery_failures", s.DeliveryFailures).
		Int("pruned", s.Pruned).
		Bool("reference_available", s.ReferenceAvailable).
		Dur("duration", s.Duration())
}
