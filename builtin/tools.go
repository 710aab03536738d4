package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/moneypilot/moneypilot/tool"
)

// Tool names.
const (
	ToolCurrentTime   = "current_time"
	ToolPercentChange = "percent_change"
)

var now = time.Now

// TimeArgs are the current_time arguments.
type TimeArgs struct {
	Timezone string `json:"timezone" desc:"IANA time zone such as America/New_York. Defaults to UTC."`
}

// TimeResult is the current_time output.
type TimeResult struct {
	Timezone string `json:"timezone"`
	Time     string `json:"time"`
	Weekday  string `json:"weekday"`
	Unix     int64  `json:"unix"`
}

// ChangeArgs are the percent_change arguments.
type ChangeArgs struct {
	From float64 `json:"from" desc:"Starting value" required:"true"`
	To   float64 `json:"to" desc:"Ending value" required:"true"`
}

// ChangeResult is the percent_change output.
type ChangeResult struct {
	From    float64 `json:"from"`
	To      float64 `json:"to"`
	Change  float64 `json:"change"`
	Percent float64 `json:"percent"`
}

// ErrZeroBase is returned when a percent change starts from zero.
var ErrZeroBase = errors.New("percent change from zero is undefined")

// CurrentTime reports the wall clock in a time zone.
func CurrentTime(ctx context.Context, args TimeArgs) (any, error) {
	tz := args.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", tz)
	}
	t := now().In(loc)
	return TimeResult{
		Timezone: tz,
		Time:     t.Format(time.RFC3339),
		Weekday:  t.Weekday().String(),
		Unix:     t.Unix(),
	}, nil
}

// PercentChange computes the relative change between two values, rounded
// to four decimal places. A negative base is measured by its magnitude.
func PercentChange(ctx context.Context, args ChangeArgs) (any, error) {
	if args.From == 0 {
		return nil, ErrZeroBase
	}
	pct := (args.To - args.From) / math.Abs(args.From) * 100
	return ChangeResult{
		From:    args.From,
		To:      args.To,
		Change:  round(args.To-args.From, 4),
		Percent: round(pct, 4),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Tools returns the built-in tools.
func Tools() []tool.Tool {
	return []tool.Tool{
		tool.MustFunc(ToolCurrentTime, "Get the current date and time in a time zone", CurrentTime),
		tool.MustFunc(ToolPercentChange, "Compute the percent change from one value to another", PercentChange),
	}
}

// Source offers the built-in tools to tool.Registry.Discover.
func Source() tool.Source {
	return tool.Static(Tools()...)
}
