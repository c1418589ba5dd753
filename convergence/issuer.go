package convergence

import (
	"context"
	"fmt"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// Issuer sends force-refresh requests for every target that does not have one
// outstanding.
type Issuer struct {
	refresher refresh.Refresher
	kind      string
}

// NewIssuer creates an Issuer for the given resource kind.
func NewIssuer(refresher refresh.Refresher, kind string) *Issuer {
	return &Issuer{refresher: refresher, kind: kind}
}

// Issue sends a force-refresh request for every target in the population that
// is not already in the refreshed set. It returns issued=false when there was
// nothing to send, signalling the orchestrator to move on to polling.
//
// Per-target failures are recorded in the state's error list and as
// diagnostics; the failed target stays out of the refreshed set so it is
// retried next tick, and the remaining targets are still attempted.
//
// The returned status defaults to StatusRunning. If the service reports that
// it applied any request in the batch synchronously, the status for the whole
// tick becomes StatusSucceeded even when other targets in the same batch
// were only queued or failed outright.
func (i *Issuer) Issue(ctx context.Context, exec Execution, state *State) (status Status, issued bool, diags []Diagnostic) {
	status = StatusRunning

	for _, target := range state.Targets(exec.Account) {
		if state.IsRefreshed(target) {
			continue
		}

		issued = true
		result, err := i.refresher.ForceRefresh(ctx, exec.CloudProvider, i.kind, target.Fields())
		if err != nil {
			msg := fmt.Sprintf("force refresh %s: %v", target.Key(), err)
			state.RecordError(msg)
			diags = append(diags, newDiagnostic(ctx, DiagIssueFailed, &target, msg))
			continue
		}

		if result.Applied {
			status = StatusSucceeded
		}
		state.MarkRefreshed(target)
	}

	return status, issued, diags
}
