package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/event"
	"github.com/moneypilot/moneypilot/workflow"
)

var schemas = []ai.ToolSchema{{
	Name:        "percent_change",
	Description: "Compute the percent change",
	Parameters:  []ai.Parameter{{Name: "from", Type: ai.TypeNumber, Required: true}},
}}

func TestPrintTools(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printTools(&buf, "text", schemas))
		assert.Contains(t, buf.String(), "NAME")
		assert.Contains(t, buf.String(), "percent_change")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printTools(&buf, "yaml", schemas))

		var got []ai.ToolSchema
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, schemas, got)
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printTools(&buf, "json", schemas))
		assert.Contains(t, buf.String(), `"name": "percent_change"`)
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, printTools(&bytes.Buffer{}, "xml", schemas))
	})
}

func TestPrintWorkflows(t *testing.T) {
	descs := []workflow.Description{{Name: "price_change", Entry: "prepare", Nodes: []string{"prepare", "report"}}}

	var buf bytes.Buffer
	require.NoError(t, printWorkflows(&buf, "text", descs))
	assert.Contains(t, buf.String(), "price_change")

	buf.Reset()
	require.NoError(t, printWorkflows(&buf, "yaml", descs))
	assert.Contains(t, buf.String(), "entry: prepare")
}

func TestDescribeEvent(t *testing.T) {
	assert.Equal(t, "classify -up-> report", describeEvent(event.Event{
		Type: event.RouteSelected, StepName: "classify", RouteName: "up", Target: "report",
	}))
	assert.Equal(t, "draft #2", describeEvent(event.Event{Type: event.LoopIteration, StepName: "draft", Iteration: 2}))
	assert.Equal(t, "run-1", describeEvent(event.Event{Type: event.RunStart, RunID: "run-1"}))
}
