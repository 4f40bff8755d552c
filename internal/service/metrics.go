package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Общий реестр метрик бота. Используем свой реестр вместо глобального, чтобы
// на /metrics не попадало ничего лишнего.
var registry = prometheus.NewRegistry()

var (
	generationsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_bot_generations_total",
			Help: "Total number of post generation requests, partitioned by mode and status.",
		},
		[]string{"mode", "status"},
	)
	transcriptionsTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_bot_transcriptions_total",
			Help: "Total number of voice transcription attempts, partitioned by status.",
		},
		[]string{"status"},
	)
	publishesTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_bot_publishes_total",
			Help: "Total number of publish attempts, partitioned by status.",
		},
		[]string{"status"},
	)
)

// Registry отдает реестр для HTTP-обработчика метрик.
func Registry() *prometheus.Registry {
	return registry
}

// ObservePublish фиксирует исход попытки публикации.
func ObservePublish(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	publishesTotal.WithLabelValues(status).Inc()
}
