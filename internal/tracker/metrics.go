package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	// commandsTotal counts commands by name and outcome.
	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ironlog_commands_total",
		Help: "Training commands handled, by command and outcome",
	}, []string{"command", "outcome"})

	// eventsAppended counts events written to the log.
	eventsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ironlog_events_appended_total",
		Help: "Events appended to the training log",
	})
)
