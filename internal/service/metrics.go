package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var occurrencesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tiger_occurrences_generated_total",
	Help: "Number of recurring occurrences materialized, by entity kind.",
}, []string{"entity"})

var aiGenerations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tiger_ai_generations_total",
	Help: "Number of successful AI subtask generations.",
})
