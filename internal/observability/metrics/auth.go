package metrics

import (
	obserrors "github.com/Shiki0138/fleeksonline/internal/observability/errors"
	"github.com/Shiki0138/fleeksonline/internal/observability/statsd"
)

// Denial reason constants for metric tagging.
const (
	ReasonUnauthorized = "unauthorized"
	ReasonForbidden    = "forbidden"
	ReasonRateLimited  = "rate_limited"
)

// AuthDenial captures details about a rejected request for metric emission.
type AuthDenial struct {
	Reason string
	Err    error
}

// EmitAuthDenial emits a standardised counter for auth gate rejections.
// When the denial was caused by an infrastructure error (e.g. a failed
// role lookup), the error class is attached for alerting.
func EmitAuthDenial(sink statsd.Sink, in AuthDenial) {
	if sink == nil {
		return
	}

	tags := map[string]string{"reason": in.Reason}
	if in.Err != nil {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("auth.denied", 1, tags)
}
