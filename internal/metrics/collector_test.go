package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/moneypilot/moneypilot"
)

func TestCollectorLLMRequest(t *testing.T) {
	c := NewCollector("")

	c.LLMRequest("openai", "gpt-4", 500*time.Millisecond, ai.Usage{InputTokens: 100, OutputTokens: 40}, nil)
	c.LLMRequest("openai", "gpt-4", time.Second, ai.Usage{}, errors.New("rate limited"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("openai", "gpt-4", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.llmRequestsTotal.WithLabelValues("openai", "gpt-4", "error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("openai", "gpt-4", "input")))
	assert.Equal(t, 40.0, testutil.ToFloat64(c.llmTokensUsed.WithLabelValues("openai", "gpt-4", "output")))
	// 100/1M * $30 + 40/1M * $60
	assert.InDelta(t, 0.0054, testutil.ToFloat64(c.llmCost.WithLabelValues("openai", "gpt-4")), 1e-9)
}

func TestCollectorWorkflow(t *testing.T) {
	c := NewCollector("")

	c.StepCompleted("price_change", "compute", 10*time.Millisecond, nil)
	c.StepCompleted("price_change", "compute", 10*time.Millisecond, errors.New("bad input"))
	c.RunCompleted("price_change", "completed", 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("price_change", "compute", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stepsTotal.WithLabelValues("price_change", "compute", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.runsTotal.WithLabelValues("price_change", "completed")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.runDuration))
}

func TestCollectorToolsAndHTTP(t *testing.T) {
	c := NewCollector("")

	c.ToolExecuted("percent_change", time.Millisecond, nil)
	c.ToolExecuted("percent_change", time.Millisecond, nil)
	c.RecordHTTPRequest("GET", "/api/v1/health", 200, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.toolCallsTotal.WithLabelValues("percent_change", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequestsTotal.WithLabelValues("GET", "/api/v1/health", "200")))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(""), NewCollector("")
	a.ToolExecuted("x", time.Millisecond, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(a.toolCallsTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(b.toolCallsTotal))
}

func TestHandler(t *testing.T) {
	c := NewCollector("moneypilot")
	c.RunCompleted("price_change", "completed", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `moneypilot_workflow_runs_total{status="completed",workflow="price_change"} 1`)
}
