package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_import_uploads_total",
		Help: "File uploads received, by import profile.",
	}, []string{"profile"})

	parseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onboarding_import_parse_failures_total",
		Help: "Uploads rejected at parse time.",
	})

	rowsCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onboarding_import_rows_committed_total",
		Help: "Rows transformed into canonical records at commit, by profile.",
	}, []string{"profile"})
)
