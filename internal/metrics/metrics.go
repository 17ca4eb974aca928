// Package metrics exposes gameplay counters on the default Prometheus
// registry, served by the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Name:      "rooms_created_total",
		Help:      "Rooms created.",
	})

	PlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Name:      "players_joined_total",
		Help:      "Players that joined a room.",
	})

	GamesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Name:      "games_created_total",
		Help:      "Games generated from room settings.",
	})

	AnswersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Name:      "answers_submitted_total",
		Help:      "Answers accepted for grading.",
	})

	AnswersCorrect = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trivia",
		Name:      "answers_correct_total",
		Help:      "Accepted answers graded correct.",
	})
)
