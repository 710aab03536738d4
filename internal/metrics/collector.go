// Package metrics records workflow, tool, LLM, and HTTP metrics in
// Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/client"
	"github.com/moneypilot/moneypilot/internal/pricing"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/moneypilot/moneypilot/workflow"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "moneypilot"

// Collector owns a private registry so that several collectors can coexist
// in one process.
type Collector struct {
	registry *prometheus.Registry

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// LLM
	llmRequestsTotal   *prometheus.CounterVec
	llmRequestDuration *prometheus.HistogramVec
	llmTokensUsed      *prometheus.CounterVec
	llmCost            *prometheus.CounterVec

	// Workflow
	runsTotal    *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec

	// Tools
	toolCallsTotal   *prometheus.CounterVec
	toolCallDuration *prometheus.HistogramVec
}

var (
	_ workflow.Observer = (*Collector)(nil)
	_ tool.Observer     = (*Collector)(nil)
	_ client.Observer   = (*Collector)(nil)
)

// NewCollector creates a Collector. An empty namespace uses DefaultNamespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Collector{
		registry: reg,

		httpRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		llmRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		}, []string{"provider", "model", "status"}),
		llmRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds, retries included",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"provider", "model"}),
		llmTokensUsed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_used_total",
			Help:      "Total number of tokens used",
		}, []string{"provider", "model", "type"}), // type: input, output
		llmCost: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_cost_total",
			Help:      "Estimated LLM cost in USD",
		}, []string{"provider", "model"}),

		runsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "Total number of workflow runs by final status",
		}, []string{"workflow", "status"}),
		runDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_run_duration_seconds",
			Help:      "Workflow run duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"workflow"}),
		stepsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_steps_total",
			Help:      "Total number of executed workflow steps",
		}, []string{"workflow", "step", "status"}),
		stepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_step_duration_seconds",
			Help:      "Workflow step duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow", "step"}),

		toolCallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of tool executions",
		}, []string{"tool", "status"}),
		toolCallDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "Tool execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collected metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest records one served request. route is the matched
// pattern, not the raw path, to bound cardinality.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// LLMRequest implements client.Observer.
func (c *Collector) LLMRequest(provider, model string, d time.Duration, usage ai.Usage, err error) {
	c.llmRequestsTotal.WithLabelValues(provider, model, status(err)).Inc()
	c.llmRequestDuration.WithLabelValues(provider, model).Observe(d.Seconds())
	if usage.InputTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, model, "input").Add(float64(usage.InputTokens))
	}
	if usage.OutputTokens > 0 {
		c.llmTokensUsed.WithLabelValues(provider, model, "output").Add(float64(usage.OutputTokens))
	}
	if cost := pricing.Cost(model, usage); cost > 0 {
		c.llmCost.WithLabelValues(provider, model).Add(cost)
	}
}

// StepCompleted implements workflow.Observer.
func (c *Collector) StepCompleted(wf, step string, d time.Duration, err error) {
	c.stepsTotal.WithLabelValues(wf, step, status(err)).Inc()
	c.stepDuration.WithLabelValues(wf, step).Observe(d.Seconds())
}

// RunCompleted implements workflow.Observer.
func (c *Collector) RunCompleted(wf, runStatus string, d time.Duration) {
	c.runsTotal.WithLabelValues(wf, runStatus).Inc()
	c.runDuration.WithLabelValues(wf).Observe(d.Seconds())
}

// ToolExecuted implements tool.Observer.
func (c *Collector) ToolExecuted(name string, d time.Duration, err error) {
	c.toolCallsTotal.WithLabelValues(name, status(err)).Inc()
	c.toolCallDuration.WithLabelValues(name).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
