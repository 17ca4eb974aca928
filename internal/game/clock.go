package game

import "time"

// Phase of a round relative to wall-clock time. Never persisted; recomputed
// on every access.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseEnded      Phase = "ended"
)

// RoundPhase evaluates a round's half-open window [CreatedAt, EndedAt) at
// the given instant: exactly at EndedAt the round is already Ended.
func RoundPhase(r Round, now time.Time) Phase {
	if now.Before(r.CreatedAt) {
		return PhaseNotStarted
	}
	if !now.Before(r.EndedAt) {
		return PhaseEnded
	}
	return PhaseActive
}
