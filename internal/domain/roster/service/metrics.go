package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	parseRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmaguardia",
		Subsystem: "roster",
		Name:      "parse_runs_total",
		Help:      "Roster parse runs by region and outcome.",
	}, []string{"region", "outcome"})

	pagesExtracted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmaguardia",
		Subsystem: "roster",
		Name:      "pages_extracted_total",
		Help:      "PDF pages handed to a parsing strategy.",
	}, []string{"region"})

	schedulesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "farmaguardia",
		Subsystem: "roster",
		Name:      "schedules_parsed_total",
		Help:      "Duty schedules produced per region and location.",
	}, []string{"region", "location"})
)
