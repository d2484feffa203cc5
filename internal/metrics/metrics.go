package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Каждый отдельный вызов генеративного api
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendoai",
			Name:      "generation_attempts_total",
			Help:      "Total number of generation attempts",
		},
		[]string{"tier", "result"},
	)

	Escalations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendoai",
			Name:      "ladder_escalations_total",
			Help:      "Total number of credential ladder escalations",
		},
		[]string{"to"},
	)

	// 0 - основной профиль
	LadderPosition = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trendoai",
			Name:      "ladder_position",
			Help:      "Index of the active credential tier (0 = primary)",
		},
	)

	PublishCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendoai",
			Name:      "publish_cycles_total",
			Help:      "Total number of publish cycles by outcome",
		},
		[]string{"status"},
	)

	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendoai",
			Name:      "channel_deliveries_total",
			Help:      "Total number of channel deliveries by kind and status",
		},
		[]string{"kind", "status"},
	)

	// unsplash или placeholder
	ImageLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trendoai",
			Name:      "image_lookups_total",
			Help:      "Total number of image lookups by source",
		},
		[]string{"source"},
	)
)
