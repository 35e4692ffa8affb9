// Package metrics 提供校验引擎的 Prometheus 指标。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config 配置指标名称前缀与直方图分桶。
type Config struct {
	// Namespace 是所有指标的前缀（默认 "fieldconf"）
	Namespace string
	// Subsystem 是可选的子系统名（默认 "engine"）
	Subsystem string
	// Buckets 是校验耗时直方图的分桶
	Buckets []float64
}

// DefaultConfig 返回默认配置。
func DefaultConfig() Config {
	return Config{
		Namespace: "fieldconf",
		Subsystem: "engine",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}
}

// Collector 汇总模型加载、校验与更新的计数。nil Collector 的所有方法都是空操作。
type Collector struct {
	modelLoads         *prometheus.CounterVec
	validationsTotal   *prometheus.CounterVec
	rejectionsTotal    *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	updatePasses       *prometheus.CounterVec
}

// New 在 reg 上注册并返回 Collector；reg 为 nil 时使用默认注册表。
func New(cfg Config, reg prometheus.Registerer) *Collector {
	def := DefaultConfig()
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = def.Subsystem
	}
	if len(cfg.Buckets) == 0 {
		cfg.Buckets = def.Buckets
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		modelLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "model_loads_total",
				Help:      "Model configuration loads by outcome.",
			},
			[]string{"model", "result"},
		),
		validationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validations_total",
				Help:      "Record validations by outcome.",
			},
			[]string{"model", "result"},
		),
		rejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rejections_total",
				Help:      "Field rejections by error code.",
			},
			[]string{"model", "field", "code"},
		),
		validationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "validation_duration_seconds",
				Help:      "Record validation latency in seconds.",
				Buckets:   cfg.Buckets,
			},
			[]string{"model"},
		),
		updatePasses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "update_passes_total",
				Help:      "Field updates applied, split by first pass and redo pass.",
			},
			[]string{"model", "pass"},
		),
	}
}

// ModelLoaded 记录一次模型加载。
func (c *Collector) ModelLoaded(model string, err error) {
	if c == nil {
		return
	}
	c.modelLoads.WithLabelValues(model, outcome(err == nil, "ok", "error")).Inc()
}

// Validated 记录一次校验及其耗时。
func (c *Collector) Validated(model string, valid bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.validationsTotal.WithLabelValues(model, outcome(valid, "valid", "rejected")).Inc()
	c.validationDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// Rejected 记录一个字段拒绝。
func (c *Collector) Rejected(model, field, code string) {
	if c == nil {
		return
	}
	c.rejectionsTotal.WithLabelValues(model, field, code).Inc()
}

// Updated 记录 pass（"first" 或 "redo"）中写入的字段数。
func (c *Collector) Updated(model, pass string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.updatePasses.WithLabelValues(model, pass).Add(float64(n))
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
