// Package metrics emits the control panel's standard StatsD metrics.
package metrics

import (
	"time"

	obserrors "github.com/target/control-panel-ui/internal/observability/errors"
	"github.com/target/control-panel-ui/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// SignInMetric captures one completed sign-in attempt.
type SignInMetric struct {
	Result   string
	Shared   bool
	Duration time.Duration
	Err      error
}

// EmitSignIn emits auth.sign_in and auth.sign_in.duration.
func EmitSignIn(sink statsd.Sink, in SignInMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	if in.Shared {
		tags["shared"] = "true"
	}
	addErrorClass(tags, in.Err)

	sink.Count("auth.sign_in", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.sign_in.duration", in.Duration, CloneTags(tags))
	}
}

// OverrideMetric captures one halt or resume submission.
type OverrideMetric struct {
	Action   string
	State    string
	Duration time.Duration
	Err      error
}

// EmitOverride emits override.submit tagged with action and final state.
func EmitOverride(sink statsd.Sink, in OverrideMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"action": in.Action,
		"state":  in.State,
	}
	addErrorClass(tags, in.Err)

	sink.Count("override.submit", 1, tags)
	if in.Duration > 0 {
		sink.Timing("override.duration", in.Duration, CloneTags(tags))
	}
}

// EmitStatusFetch records whether the system status came from cache or the API.
func EmitStatusFetch(sink statsd.Sink, source, result string) {
	if sink == nil {
		return
	}
	sink.Count("status.fetch", 1, map[string]string{"source": source, "result": result})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func addErrorClass(tags map[string]string, err error) {
	if err == nil {
		return
	}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
}
