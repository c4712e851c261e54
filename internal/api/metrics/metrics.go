package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meal_planner"

// Collector Prometheus 指標（獨立 registry）
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	menusComposedTotal *prometheus.CounterVec
	menusEmptyTotal    *prometheus.CounterVec
	composeDuration    *prometheus.HistogramVec

	queueLength prometheus.GaugeFunc
}

// NewCollector 創建指標收集器
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		menusComposedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menus_composed_total",
				Help:      "Total number of menus composed",
			},
			[]string{"kind"},
		),
		menusEmptyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "menus_insufficient_total",
				Help:      "Compositions that produced no menu because the ingredient pool was too small",
			},
			[]string{"kind"},
		),
		composeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "compose_duration_seconds",
				Help:      "Menu composition duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"kind"},
		),
	}
}

// HTTPMiddleware 記錄每個請求的次數與耗時
func (m *Collector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// MenuComposed 記錄一次菜單組合
func (m *Collector) MenuComposed(kind string, meals int, duration time.Duration) {
	if meals == 0 {
		m.menusEmptyTotal.WithLabelValues(kind).Inc()
	} else {
		m.menusComposedTotal.WithLabelValues(kind).Inc()
	}
	m.composeDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// WatchQueue 匯出工作隊列長度
func (m *Collector) WatchQueue(length func() int) {
	m.queueLength = promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Number of jobs waiting in the batch queue",
		},
		func() float64 { return float64(length()) },
	)
}

// WatchDB 匯出資料庫連線池統計
func (m *Collector) WatchDB(db *sql.DB) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(db, "meal_planner"))
}

// Registry 底層 registry
func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 處理器
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
