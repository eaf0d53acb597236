package metrics

import (
	"time"

	obserrors "github.com/atelierweb/atelier-api/internal/observability/errors"
	"github.com/atelierweb/atelier-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultAccepted    = "accepted"
	ResultRejected    = "rejected"
	ResultSpam        = "spam"
	ResultRateLimited = "rate_limited"
	ResultError       = "error"
)

// IntakeMetric captures details about a submission outcome for metric emission.
type IntakeMetric struct {
	Source   string
	Project  string
	Result   string
	Duration time.Duration
	Err      error
}

// EmitIntakeOutcome emits standardised submission outcome metrics.
func EmitIntakeOutcome(sink statsd.Sink, in IntakeMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"source": in.Source,
		"result": in.Result,
	}
	if in.Project != "" {
		tags["project"] = in.Project
	}

	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("intake.submission", 1, tags)

	if in.Duration > 0 {
		sink.Timing("intake.duration", in.Duration, CloneTags(tags))
	}
}

// EmitNotification records a single notification delivery attempt.
func EmitNotification(sink statsd.Sink, name string, err error) {
	if sink == nil {
		return
	}

	tags := map[string]string{"sink": name}
	if err != nil {
		tags["result"] = ResultError
		if class := obserrors.Classify(err); class != "" {
			tags["error_class"] = class
		}
	} else {
		tags["result"] = "delivered"
	}

	sink.Count("notify.delivery", 1, tags)
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
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
