package agui

import (
	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/moneypilot/moneypilot/event"
)

// RoleAssistant is the role given to streamed agent answers.
const RoleAssistant = "assistant"

// Custom event names for routing events, which AG-UI has no type for.
const (
	CustomRouteSelected = "route_selected"
	CustomLoopIteration = "loop_iteration"
)

// Mapper converts run events to AG-UI events. Create one per run; it is
// not safe for concurrent use.
type Mapper struct {
	threadID string
	runID    string
}

// NewMapper creates a Mapper. Empty IDs are generated.
func NewMapper(threadID, runID string) *Mapper {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	return &Mapper{threadID: threadID, runID: runID}
}

func (m *Mapper) ThreadID() string { return m.threadID }

func (m *Mapper) RunID() string { return m.runID }

// RunError returns a RUN_ERROR event.
func (m *Mapper) RunError(err error) events.Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return events.NewRunErrorEvent(msg)
}

// Map converts one event. A tool call start expands into the AG-UI
// start, args, and end triple; the end of a run is preceded by a state
// snapshot when the final state is known. Events with no AG-UI
// counterpart map to nothing.
func (m *Mapper) Map(e event.Event) []events.Event {
	switch e.Type {
	case event.RunStart:
		return one(events.NewRunStartedEvent(m.threadID, m.runID))
	case event.RunEnd:
		out := make([]events.Event, 0, 2)
		if e.State != nil {
			out = append(out, events.NewStateSnapshotEvent(e.State))
		}
		return append(out, events.NewRunFinishedEvent(m.threadID, m.runID))
	case event.RunError:
		return one(m.RunError(e.Error))

	case event.StepStart:
		return one(events.NewStepStartedEvent(e.StepName))
	case event.StepEnd:
		return one(events.NewStepFinishedEvent(e.StepName))

	case event.RouteSelected:
		return one(events.NewCustomEvent(CustomRouteSelected, events.WithValue(map[string]any{
			"step":   e.StepName,
			"route":  e.RouteName,
			"target": e.Target,
		})))
	case event.LoopIteration:
		return one(events.NewCustomEvent(CustomLoopIteration, events.WithValue(map[string]any{
			"step":      e.StepName,
			"iteration": e.Iteration,
		})))

	case event.MessageStart:
		return one(events.NewTextMessageStartEvent(e.MessageID, events.WithRole(RoleAssistant)))
	case event.MessageDelta:
		if e.Delta == "" {
			return nil
		}
		return one(events.NewTextMessageContentEvent(e.MessageID, e.Delta))
	case event.MessageEnd:
		return one(events.NewTextMessageEndEvent(e.MessageID))

	case event.ToolCallStart:
		if e.ToolCall == nil {
			return nil
		}
		out := []events.Event{events.NewToolCallStartEvent(e.ToolCall.ID, e.ToolCall.Name)}
		if e.ToolCall.Arguments != "" {
			out = append(out, events.NewToolCallArgsEvent(e.ToolCall.ID, e.ToolCall.Arguments))
		}
		return append(out, events.NewToolCallEndEvent(e.ToolCall.ID))
	case event.ToolCallResult:
		if e.ToolCall == nil || e.ToolResult == nil {
			return nil
		}
		return one(events.NewToolCallResultEvent(events.GenerateMessageID(), e.ToolCall.ID, e.ToolResult.Content))
	}
	return nil
}

// MapStream maps every event from in. The output closes when in does.
func (m *Mapper) MapStream(in <-chan event.Event) <-chan events.Event {
	out := make(chan events.Event, 100)
	go func() {
		defer close(out)
		for e := range in {
			for _, ev := range m.Map(e) {
				out <- ev
			}
		}
	}()
	return out
}

func one(ev events.Event) []events.Event {
	return []events.Event{ev}
}
