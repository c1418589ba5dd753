package convergence

import "context"

// DiagnosticKind classifies a diagnostic event.
type DiagnosticKind string

const (
	// DiagIssueFailed records one failed force-refresh call. The target is
	// retried on the next tick.
	DiagIssueFailed DiagnosticKind = "issue_failed"

	// DiagNotAcknowledged records a target the service has no pending-update
	// record for; the target was re-queued for issuance.
	DiagNotAcknowledged DiagnosticKind = "not_acknowledged"

	// DiagStaleRecord records a pending update whose timestamps predate the
	// current refresh cycle; the target was re-queued for issuance.
	DiagStaleRecord DiagnosticKind = "stale_record"

	// DiagAutoSucceed marks a tick that was forced to succeed because the
	// auto-succeed threshold elapsed.
	DiagAutoSucceed DiagnosticKind = "auto_succeed"
)

// Diagnostic is a structured event describing a recoverable condition
// observed during a tick. Diagnostics are returned alongside the tick result
// rather than only logged, so callers and tests can assert on them.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Target  *Target        `json:"target,omitempty"`
	Message string         `json:"message,omitempty"`
	Tags    []string       `json:"tags,omitempty"`
}

func newDiagnostic(ctx context.Context, kind DiagnosticKind, target *Target, message string) Diagnostic {
	return Diagnostic{
		Kind:    kind,
		Target:  target,
		Message: message,
		Tags:    tagsFromContext(ctx),
	}
}
