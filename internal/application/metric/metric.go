package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP метрики - количество запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - время обработки запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Время обработки HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP метрики - количество ошибок
	httpErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Общее количество HTTP ошибок",
		},
		[]string{"method", "endpoint", "status"},
	)

	// WS метрики - количество активных соединений
	wsActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Количество активных WebSocket соединений",
		},
	)

	wsRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_rate_limited_messages_total",
			Help: "Сообщения, отброшенные rate limiter-ом",
		},
	)

	// Игровые метрики
	roomsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Количество живых комнат",
		},
		[]string{"kind"},
	)

	phaseTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_phase_transitions_total",
			Help: "Переходы между фазами комнат",
		},
		[]string{"kind", "status", "phase"},
	)

	gamesFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Завершенные игры по победителю",
		},
		[]string{"kind", "winner"},
	)

	eliminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eliminations_total",
			Help: "Игроки, выбывшие по итогам голосования",
		},
		[]string{"kind"},
	)

	storeWriteErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "document_store_write_errors_total",
			Help: "Ошибки сохранения документов в БД",
		},
	)
)

// RecordHTTPMetrics записывает метрики HTTP запроса
func RecordHTTPMetrics(method, endpoint string, status int, duration time.Duration) {
	strStatus := strconv.Itoa(status)

	httpRequestsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, strStatus).Observe(duration.Seconds())

	// Записываем ошибки (статус >= 400)
	if status >= 400 {
		httpErrorsTotal.WithLabelValues(method, endpoint, strStatus).Inc()
	}
}

func IncrementWSActiveConnections() {
	wsActiveConnections.Inc()
}

func DecrementWSActiveConnections() {
	wsActiveConnections.Dec()
}

func IncrementWSRateLimited() {
	wsRateLimitedTotal.Inc()
}

func IncrementRoomsActive(kind string) {
	roomsActive.WithLabelValues(kind).Inc()
}

func DecrementRoomsActive(kind string) {
	roomsActive.WithLabelValues(kind).Dec()
}

func RecordPhaseTransition(kind, status, phase string) {
	phaseTransitionsTotal.WithLabelValues(kind, status, phase).Inc()
}

func RecordGameFinished(kind, winner string) {
	if winner == "" {
		winner = "none"
	}

	gamesFinishedTotal.WithLabelValues(kind, winner).Inc()
}

func IncrementStoreWriteErrors() {
	storeWriteErrorsTotal.Inc()
}

func IncrementEliminations(kind string) {
	eliminationsTotal.WithLabelValues(kind).Inc()
}
