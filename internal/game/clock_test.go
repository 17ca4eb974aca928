package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundPhase(t *testing.T) {
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rnd := Round{
		CreatedAt: start,
		EndedAt:   start.Add(60 * time.Second),
	}

	cases := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"well before start", start.Add(-time.Hour), PhaseNotStarted},
		{"one nanosecond before start", start.Add(-time.Nanosecond), PhaseNotStarted},
		{"exactly at start", start, PhaseActive},
		{"mid window", start.Add(30 * time.Second), PhaseActive},
		{"one nanosecond before end", start.Add(60*time.Second - time.Nanosecond), PhaseActive},
		{"exactly at end", start.Add(60 * time.Second), PhaseEnded},
		{"after end", start.Add(time.Hour), PhaseEnded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RoundPhase(rnd, tc.now))
		})
	}
}
